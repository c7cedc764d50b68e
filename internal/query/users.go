package query

import (
	"cmp"
	"slices"
	"strings"

	"GameMasterService/internal/models"
)

// userSortAliases допустимые пути сортировки пользователей
var userSortAliases = map[string]string{
	"username":                               "username",
	"name":                                   "name",
	"characterStats.level":                   "level",
	"character_stats.level":                  "level",
	"characterStats.experience":              "experience",
	"character_stats.experience":             "experience",
	"characterStats.experienceToLevelUp":     "experienceToLevelUp",
	"character_stats.experience_to_level_up": "experienceToLevelUp",
}

var userComparators = map[string]func(a, b *models.User) int{
	"username": func(a, b *models.User) int { return strings.Compare(a.Username, b.Username) },
	"name":     func(a, b *models.User) int { return strings.Compare(a.Name, b.Name) },
	"level": func(a, b *models.User) int {
		return cmp.Compare(a.CharacterStats.Level, b.CharacterStats.Level)
	},
	"experience": func(a, b *models.User) int {
		return cmp.Compare(a.CharacterStats.Experience, b.CharacterStats.Experience)
	},
	"experienceToLevelUp": func(a, b *models.User) int {
		return cmp.Compare(a.CharacterStats.ExperienceToLevelUp, b.CharacterStats.ExperienceToLevelUp)
	},
}

// UserQuery разобранные параметры выборки пользователей
type UserQuery struct {
	topics []string
	sort   []sortField
}

// ParseUserQuery проверяет параметры запроса и строит UserQuery.
// При сортировке по пути без явного направления используется убывание.
func ParseUserQuery(req *models.ListUsersRequest) (*UserQuery, error) {
	q := &UserQuery{}
	for _, topic := range strings.Split(req.Topics, ",") {
		if topic = strings.TrimSpace(topic); topic != "" {
			q.topics = append(q.topics, topic)
		}
	}

	order := req.Order
	if strings.TrimSpace(order) == "" {
		order = req.OrderByDirection
	}
	sort, err := resolveSort(req.SortBy, order, req.OrderBy, userSortAliases, true)
	if err != nil {
		return nil, err
	}
	q.sort = sort

	return q, nil
}

// Apply возвращает новых отфильтрованных пользователей.
// Без сортировки сохраняется порядок хранилища.
func (q *UserQuery) Apply(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for i := range users {
		if !q.matches(&users[i]) {
			continue
		}
		out = append(out, users[i])
	}

	if len(q.sort) == 0 {
		return out
	}

	slices.SortStableFunc(out, func(a, b models.User) int {
		for _, f := range q.sort {
			c := userComparators[f.key](&a, &b)
			if f.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return strings.Compare(a.ID, b.ID)
	})

	return out
}

func (q *UserQuery) matches(u *models.User) bool {
	for _, topic := range q.topics {
		if !u.HasTopic(topic) {
			return false
		}
	}
	return true
}
