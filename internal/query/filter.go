package query

import (
	"cmp"
	"fmt"
	"strings"
	"time"

	"GameMasterService/internal/models"
	"GameMasterService/pkg/apperrors"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// eventPredicate проверяет событие на соответствие фильтру
type eventPredicate func(*models.Event) bool

// eventFields сопоставляет идентификаторы фильтра со значениями события
var eventFields = map[string]func(*models.Event) any{
	"game_type":     func(e *models.Event) any { return e.GameType },
	"host_id":       func(e *models.Event) any { return e.HostID },
	"collection_id": func(e *models.Event) any { return e.CollectionID },
	"capacity":      func(e *models.Event) any { return int64(e.Capacity) },
	"date_time":     func(e *models.Event) any { return e.DateTime },
}

// eventDeclarations возвращает объявления полей для фильтрации событий
func eventDeclarations() (*filtering.Declarations, error) {
	return filtering.NewDeclarations(
		filtering.DeclareStandardFunctions(),
		filtering.DeclareIdent("game_type", filtering.TypeString),
		filtering.DeclareIdent("host_id", filtering.TypeString),
		filtering.DeclareIdent("collection_id", filtering.TypeString),
		filtering.DeclareIdent("capacity", filtering.TypeInt),
		filtering.DeclareIdent("date_time", filtering.TypeTimestamp),
	)
}

// parseEventFilter разбирает выражение AIP-160 в предикат.
// Для пустого выражения возвращает nil.
func parseEventFilter(filterStr string) (eventPredicate, error) {
	if strings.TrimSpace(filterStr) == "" {
		return nil, nil
	}

	decls, err := eventDeclarations()
	if err != nil {
		return nil, fmt.Errorf("create declarations: %w", err)
	}

	filter, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return nil, apperrors.NewValidationError("filter", err.Error())
	}
	if filter.CheckedExpr == nil || filter.CheckedExpr.GetExpr() == nil {
		return nil, nil
	}

	pred, err := compileExpr(filter.CheckedExpr.GetExpr())
	if err != nil {
		return nil, apperrors.NewValidationError("filter", err.Error())
	}
	return pred, nil
}

func compileExpr(e *expr.Expr) (eventPredicate, error) {
	call, ok := e.GetExprKind().(*expr.Expr_CallExpr)
	if !ok {
		return nil, fmt.Errorf("unsupported expression type: %T", e.GetExprKind())
	}

	fn := call.CallExpr.GetFunction()
	args := call.CallExpr.GetArgs()

	switch fn {
	case filtering.FunctionAnd, "_&&_":
		return compileLogical(args, true)
	case filtering.FunctionOr, "_||_":
		return compileLogical(args, false)
	case filtering.FunctionNot, "!_":
		if len(args) != 1 {
			return nil, fmt.Errorf("NOT requires 1 argument")
		}
		inner, err := compileExpr(args[0])
		if err != nil {
			return nil, err
		}
		return func(ev *models.Event) bool { return !inner(ev) }, nil
	case filtering.FunctionEquals, filtering.FunctionNotEquals,
		filtering.FunctionLessThan, filtering.FunctionLessEquals,
		filtering.FunctionGreaterThan, filtering.FunctionGreaterEquals:
		return compileComparison(fn, args)
	}
	return nil, fmt.Errorf("unsupported function: %s", fn)
}

func compileLogical(args []*expr.Expr, all bool) (eventPredicate, error) {
	if len(args) < 2 {
		return nil, fmt.Errorf("logical operator requires 2 arguments")
	}
	preds := make([]eventPredicate, 0, len(args))
	for _, arg := range args {
		p, err := compileExpr(arg)
		if err != nil {
			return nil, err
		}
		preds = append(preds, p)
	}

	return func(ev *models.Event) bool {
		for _, p := range preds {
			if p(ev) != all {
				return !all
			}
		}
		return all
	}, nil
}

func compileComparison(fn string, args []*expr.Expr) (eventPredicate, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("comparison requires 2 arguments")
	}

	ident, ok := args[0].GetExprKind().(*expr.Expr_IdentExpr)
	if !ok {
		return nil, fmt.Errorf("expected identifier on the left side")
	}
	name := ident.IdentExpr.GetName()
	getter, ok := eventFields[name]
	if !ok {
		return nil, fmt.Errorf("unknown field: %s", name)
	}

	value, err := extractValue(args[1])
	if err != nil {
		return nil, err
	}
	// Проверяем совместимость типов заранее, на пустом событии
	if _, err := compareValues(getter(&models.Event{}), value); err != nil {
		return nil, fmt.Errorf("field %s: %w", name, err)
	}

	return func(ev *models.Event) bool {
		c, err := compareValues(getter(ev), value)
		if err != nil {
			return false
		}
		switch fn {
		case filtering.FunctionEquals:
			return c == 0
		case filtering.FunctionNotEquals:
			return c != 0
		case filtering.FunctionLessThan:
			return c < 0
		case filtering.FunctionLessEquals:
			return c <= 0
		case filtering.FunctionGreaterThan:
			return c > 0
		default:
			return c >= 0
		}
	}, nil
}

func extractValue(e *expr.Expr) (any, error) {
	switch kind := e.GetExprKind().(type) {
	case *expr.Expr_ConstExpr:
		switch c := kind.ConstExpr.GetConstantKind().(type) {
		case *expr.Constant_StringValue:
			return c.StringValue, nil
		case *expr.Constant_Int64Value:
			return c.Int64Value, nil
		case *expr.Constant_Uint64Value:
			return int64(c.Uint64Value), nil
		case *expr.Constant_DoubleValue:
			return c.DoubleValue, nil
		default:
			return nil, fmt.Errorf("unsupported constant type: %T", c)
		}
	case *expr.Expr_CallExpr:
		if kind.CallExpr.GetFunction() == filtering.FunctionTimestamp && len(kind.CallExpr.GetArgs()) == 1 {
			raw, err := extractValue(kind.CallExpr.GetArgs()[0])
			if err != nil {
				return nil, err
			}
			s, ok := raw.(string)
			if !ok {
				return nil, fmt.Errorf("timestamp argument must be a string")
			}
			t, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("invalid timestamp format: %s", s)
			}
			return t.UTC(), nil
		}
		return nil, fmt.Errorf("unsupported function in value position: %s", kind.CallExpr.GetFunction())
	}
	return nil, fmt.Errorf("expected constant or timestamp, got %T", e.GetExprKind())
}

func compareValues(field, value any) (int, error) {
	switch f := field.(type) {
	case string:
		v, ok := value.(string)
		if !ok {
			return 0, fmt.Errorf("expected string value")
		}
		return strings.Compare(f, v), nil
	case int64:
		switch v := value.(type) {
		case int64:
			return cmp.Compare(f, v), nil
		case float64:
			return cmp.Compare(float64(f), v), nil
		}
		return 0, fmt.Errorf("expected numeric value")
	case time.Time:
		v, ok := value.(time.Time)
		if !ok {
			return 0, fmt.Errorf("expected timestamp value")
		}
		return f.Compare(v), nil
	}
	return 0, fmt.Errorf("unsupported field type %T", field)
}
