package authz

import (
	"fmt"
	"reflect"
	"strings"
)

// FieldContext holds the request-scoped values a grant condition can
// reference. Callers own the map; evaluation never mutates it.
type FieldContext map[string]any

// FieldRef marks a condition operand as a reference into the
// FieldContext rather than a literal value.
type FieldRef string

// Expr is a grant condition. Evaluation is pure: no I/O, no clock, no
// mutation, and an unbound field makes the condition false instead of
// failing the request.
type Expr interface {
	Evaluate(fields FieldContext) bool
	String() string
}

// EqualsExpr is true when the named field equals the operand. A nil
// operand is an explicit null test and also matches an unbound field.
type EqualsExpr struct {
	Field string
	Value any
}

func (e *EqualsExpr) Evaluate(fields FieldContext) bool {
	rv, ok := resolveOperand(fields, e.Value)
	if !ok {
		return false
	}
	fv, bound := fields[e.Field]
	if rv == nil {
		return !bound || fv == nil
	}
	if !bound || fv == nil {
		return false
	}
	return equalValues(fv, rv)
}

func (e *EqualsExpr) String() string {
	return fmt.Sprintf("EQUALS(%s, %s)", e.Field, formatOperand(e.Value))
}

// NotEqualsExpr is true when the named field is bound and differs from
// the operand.
type NotEqualsExpr struct {
	Field string
	Value any
}

func (e *NotEqualsExpr) Evaluate(fields FieldContext) bool {
	rv, ok := resolveOperand(fields, e.Value)
	if !ok {
		return false
	}
	fv, bound := fields[e.Field]
	if !bound {
		return false
	}
	if rv == nil {
		return fv != nil
	}
	if fv == nil {
		return false
	}
	return !equalValues(fv, rv)
}

func (e *NotEqualsExpr) String() string {
	return fmt.Sprintf("NOT_EQUALS(%s, %s)", e.Field, formatOperand(e.Value))
}

// ListContainsExpr is true when the named field is bound to a list that
// contains the operand value.
type ListContainsExpr struct {
	Field string
	Value any
}

func (e *ListContainsExpr) Evaluate(fields FieldContext) bool {
	rv, ok := resolveOperand(fields, e.Value)
	if !ok || rv == nil {
		return false
	}
	list, bound := fields[e.Field]
	if !bound || list == nil {
		return false
	}
	switch l := list.(type) {
	case []string:
		s, ok := rv.(string)
		if !ok {
			return false
		}
		for _, item := range l {
			if item == s {
				return true
			}
		}
	case []any:
		for _, item := range l {
			if equalValues(item, rv) {
				return true
			}
		}
	}
	return false
}

func (e *ListContainsExpr) String() string {
	return fmt.Sprintf("LIST_CONTAINS(%s, %s)", e.Field, formatOperand(e.Value))
}

// OrExpr is true when any branch is true.
type OrExpr struct {
	Exprs []Expr
}

func (e *OrExpr) Evaluate(fields FieldContext) bool {
	for _, sub := range e.Exprs {
		if sub.Evaluate(fields) {
			return true
		}
	}
	return false
}

func (e *OrExpr) String() string {
	parts := make([]string, 0, len(e.Exprs))
	for _, sub := range e.Exprs {
		parts = append(parts, sub.String())
	}
	return fmt.Sprintf("OR(%s)", strings.Join(parts, "; "))
}

// resolveOperand turns a condition operand into a concrete value. A
// FieldRef pointing at an unbound key reports ok=false.
func resolveOperand(fields FieldContext, v any) (any, bool) {
	ref, isRef := v.(FieldRef)
	if !isRef {
		return v, true
	}
	rv, bound := fields[string(ref)]
	if !bound {
		return nil, false
	}
	return rv, true
}

func equalValues(a, b any) bool {
	if a == b {
		return true
	}
	return reflect.DeepEqual(a, b)
}

func formatOperand(v any) string {
	switch vv := v.(type) {
	case nil:
		return "null"
	case FieldRef:
		return "$." + string(vv)
	case string:
		return fmt.Sprintf("%q", vv)
	default:
		return fmt.Sprint(vv)
	}
}
