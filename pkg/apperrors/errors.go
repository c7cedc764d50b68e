package apperrors

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Список игнорируемых ошибок для механизмов отказоустойчивости
var (
	// ErrNotFound возвращается, когда запись не найдена (обобщенная ошибка)
	ErrNotFound = errors.New("record not found")

	// ErrConflict возвращается, когда операция противоречит текущему состоянию записи
	ErrConflict = errors.New("conflict")

	// ErrValidation общая ошибка некорректного запроса
	ErrValidation = errors.New("validation failed")

	// ErrCacheMiss возвращается, когда запись не найдена в кэше
	ErrCacheMiss = redis.Nil

	// ErrRecordNotFound возвращается, когда запись не найдена в базе данных
	ErrRecordNotFound = gorm.ErrRecordNotFound

	// ErrUserNotFound пользователь отсутствует или скрыт от запрашивающего
	ErrUserNotFound error = &notFoundError{entity: "User"}

	// ErrEventNotFound событие отсутствует
	ErrEventNotFound error = &notFoundError{entity: "Event"}

	// ErrCollectionNotFound коллекция отсутствует
	ErrCollectionNotFound error = &notFoundError{entity: "Collection"}

	// ErrEventCompleted повторное завершение события
	ErrEventCompleted = fmt.Errorf("%w: event already completed", ErrConflict)

	// IgnoredErrors содержит список всех игнорируемых ошибок для circuit breaker
	IgnoredErrors = []error{
		ErrNotFound,
		ErrConflict,
		ErrValidation,
		ErrCacheMiss,
		ErrRecordNotFound,
	}
)

type notFoundError struct {
	entity string
}

func (e *notFoundError) Error() string {
	return e.entity + " not found"
}

func (e *notFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// ValidationError описывает некорректное поле запроса
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError создает ошибку валидации для поля
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is позволяет сравнивать с ErrValidation через errors.Is
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// IsNotFound проверяет, является ли ошибка ошибкой "запись не найдена"
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}

	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCacheMiss) ||
		errors.Is(err, ErrRecordNotFound)
}

// IsValidation проверяет, вызвана ли ошибка некорректным запросом
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsConflict проверяет, противоречит ли операция состоянию записи
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
