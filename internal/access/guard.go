// Package access решает, может ли запрашивающий видеть профиль пользователя.
package access

import (
	"crypto/subtle"
	"slices"
	"strings"

	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"
)

// Viewer представляет того, кто запрашивает данные
type Viewer struct {
	ID    string
	admin bool
}

// IsAdmin сообщает, обладает ли запрашивающий административными правами
func (v Viewer) IsAdmin() bool {
	return v.admin
}

// Guard проверяет видимость пользователей с учетом блокировок
type Guard struct {
	adminToken string
}

// NewGuard создает Guard. Пустой adminToken отключает административный доступ.
func NewGuard(adminToken string) *Guard {
	return &Guard{adminToken: strings.TrimSpace(adminToken)}
}

// Authorize превращает переданный идентификатор запрашивающего в Viewer
func (g *Guard) Authorize(credential string) (Viewer, error) {
	credential = strings.TrimSpace(credential)
	if credential == "" {
		return Viewer{}, apperrors.NewValidationError("userWhoRequested", "missing requester")
	}

	if g.adminToken != "" && subtle.ConstantTimeCompare([]byte(credential), []byte(g.adminToken)) == 1 {
		return Viewer{ID: credential, admin: true}, nil
	}

	return Viewer{ID: credential}, nil
}

// CanView возвращает false, если владелец профиля заблокировал запрашивающего
func (g *Guard) CanView(target *models.User, viewer Viewer) bool {
	if viewer.admin {
		return true
	}
	return !slices.Contains(target.Blocked, viewer.ID)
}

// Block добавляет id в список блокировок. Повторы не устраняются.
func Block(target *models.User, id string) {
	target.Blocked = append(target.Blocked, id)
}
