// Package query фильтрует и сортирует выборки событий и пользователей.
package query

import (
	"strings"

	"GameMasterService/pkg/apperrors"

	"go.einride.tech/aip/ordering"
)

// sortField одно поле сортировки после разбора запроса
type sortField struct {
	key  string
	desc bool
}

// parseDirection разбирает токен направления. Пустой токен дает направление по умолчанию.
func parseDirection(token string, defaultDesc bool) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "":
		return defaultDesc, nil
	case "1", "asc":
		return false, nil
	case "-1", "desc":
		return true, nil
	}
	return false, apperrors.NewValidationError("order", "must be one of 1, -1, asc, desc")
}

// resolveSort превращает параметры запроса в список полей сортировки.
// aliases сопоставляет допустимые пути (camelCase и snake_case) с ключом сравнения.
// order_by в формате AIP-132 имеет приоритет над sortBy/order.
func resolveSort(sortBy, order, orderBy string, aliases map[string]string, defaultDesc bool) ([]sortField, error) {
	if strings.TrimSpace(orderBy) != "" {
		var parsed ordering.OrderBy
		if err := parsed.UnmarshalString(orderBy); err != nil {
			return nil, apperrors.NewValidationError("order_by", err.Error())
		}
		fields := make([]sortField, 0, len(parsed.Fields))
		for _, f := range parsed.Fields {
			key, ok := aliases[f.Path]
			if !ok {
				return nil, apperrors.NewValidationError("order_by", "unsupported sort path "+f.Path)
			}
			fields = append(fields, sortField{key: key, desc: f.Desc})
		}
		return fields, nil
	}

	sortBy = strings.TrimSpace(sortBy)
	if sortBy == "" {
		if strings.TrimSpace(order) != "" {
			if _, err := parseDirection(order, defaultDesc); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}

	key, ok := aliases[sortBy]
	if !ok {
		return nil, apperrors.NewValidationError("sortBy", "unsupported sort path "+sortBy)
	}
	desc, err := parseDirection(order, defaultDesc)
	if err != nil {
		return nil, err
	}
	return []sortField{{key: key, desc: desc}}, nil
}
