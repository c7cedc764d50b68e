package models

// GetUserRequest запрос профиля пользователя от имени запрашивающего
type GetUserRequest struct {
	UserID           string `json:"user_id"`
	UserWhoRequested string `json:"userWhoRequested"`
}

// GetUserResponse ответ с профилем пользователя
type GetUserResponse struct {
	User *User `json:"user"`
}

// ListUsersRequest параметры выборки пользователей.
// OrderByDirection принимает направление из старого клиента (?sortBy=username&orderBy=asc).
type ListUsersRequest struct {
	Topics           string `json:"topics,omitempty"`
	SortBy           string `json:"sortBy,omitempty"`
	Order            string `json:"order,omitempty"`
	OrderByDirection string `json:"orderBy,omitempty"`
	OrderBy          string `json:"order_by,omitempty"`
}

// ListUsersResponse список пользователей
type ListUsersResponse struct {
	Users []User `json:"users"`
}

// CreateUserRequest запрос на создание пользователя.
// Указатели позволяют отличить отсутствующий ключ от пустого значения.
type CreateUserRequest struct {
	Name          *string  `json:"name"`
	Username      *string  `json:"username"`
	Email         *string  `json:"email"`
	ImageURL      *string  `json:"img_url"`
	CharacterName *string  `json:"characterName"`
	Topics        []string `json:"topics,omitempty"`
}

// InsertResult результат создания записи
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// WriteResult результат изменения записей
type WriteResult struct {
	Acknowledged  bool     `json:"acknowledged"`
	ModifiedCount int      `json:"modifiedCount"`
	Msg           string   `json:"msg,omitempty"`
	Skipped       []string `json:"skipped,omitempty"`
}

// BlockUserRequest запрос на блокировку
type BlockUserRequest struct {
	UserID             string `json:"user_id"`
	UserIDToGetBlocked string `json:"userIdToGetBlocked"`
}

// AwardExperienceRequest административное начисление опыта
type AwardExperienceRequest struct {
	UserID string  `json:"user_id"`
	Exp    FlexInt `json:"exp"`
}

// AwardExperienceResponse обновленная статистика персонажа
type AwardExperienceResponse struct {
	CharacterStats CharacterStats `json:"characterStats"`
}

// InviteFriendRequest приглашение в друзья: UserID приглашает TargetID.
// Username, ImageURL и Topics передаются клиентом как подсказка профиля.
type InviteFriendRequest struct {
	UserID   string   `json:"user_id"`
	TargetID string   `json:"_id"`
	Username string   `json:"username,omitempty"`
	ImageURL string   `json:"img_url,omitempty"`
	Topics   []string `json:"topics,omitempty"`
}

// RespondFriendRequest ответ на входящую заявку
type RespondFriendRequest struct {
	UserID     string   `json:"user_id"`
	SentFrom   string   `json:"sentFrom"`
	IsAccepted FlexBool `json:"isAccepted"`
}

// ListCreaturesRequest запрос существ пользователя
type ListCreaturesRequest struct {
	UserID string `json:"user_id"`
}

// ListCreaturesResponse существа пользователя
type ListCreaturesResponse struct {
	Creatures []Creature `json:"creatures"`
}

// ListEventsRequest параметры выборки событий
type ListEventsRequest struct {
	GameType   string `json:"gameType,omitempty"`
	IsGameFull string `json:"isGameFull,omitempty"`
	SortBy     string `json:"sortBy,omitempty"`
	Order      string `json:"order,omitempty"`
	Filter     string `json:"filter,omitempty"`
	OrderBy    string `json:"order_by,omitempty"`
}

// ListEventsResponse список открытых событий
type ListEventsResponse struct {
	Events []Event `json:"events"`
}

// GetEventRequest запрос события
type GetEventRequest struct {
	EventID string `json:"event_id"`
}

// GetEventResponse событие
type GetEventResponse struct {
	Event *Event `json:"event"`
}

// CreateEventRequest запрос на создание события
type CreateEventRequest struct {
	Image        string   `json:"image"`
	GameInfo     string   `json:"gameInfo"`
	IsGameFull   FlexBool `json:"isGameFull"`
	GameType     string   `json:"gameType"`
	DateTime     string   `json:"dateTime"`
	Duration     string   `json:"duration"`
	Capacity     FlexInt  `json:"capacity"`
	HostID       string   `json:"host_id,omitempty"`
	Participants []string `json:"participants,omitempty"`
	CollectionID string   `json:"prizeCollection_id"`
}

// ResolveEventRequest патч, завершающий событие
type ResolveEventRequest struct {
	EventID      string   `json:"event_id"`
	HostID       string   `json:"host_id"`
	Participants []string `json:"participants"`
	Winner       string   `json:"winner,omitempty"`
	Duration     string   `json:"duration,omitempty"`
	GameInfo     *string  `json:"gameInfo,omitempty"`
	Image        *string  `json:"image,omitempty"`
	Capacity     FlexInt  `json:"capacity"`
	IsGameFull   FlexBool `json:"isGameFull"`
}
