package authz

import (
	"fmt"
	"strings"
)

// ParseCondition parses the textual condition form used by the DSL and
// the YAML/JSON override files:
//
//	EQUALS(user, $.owner)
//	NOT_EQUALS(user, $.owner)
//	LIST_CONTAINS(sites, $.site)
//	OR(EQUALS(user, $.owner); LIST_CONTAINS(sitesAdmin, $.site))
//
// The first argument is always a request field name. The second is a
// field reference ($.name), the null literal, a quoted string or a bare
// literal.
func ParseCondition(s string) (Expr, error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open < 0 || !strings.HasSuffix(s, ")") {
		return nil, fmt.Errorf("unsupported condition syntax: %s", s)
	}
	op := strings.TrimSpace(s[:open])
	body := s[open+1 : len(s)-1]

	switch op {
	case "EQUALS", "NOT_EQUALS", "LIST_CONTAINS":
		args, err := splitConditionArgs(body, ',')
		if err != nil {
			return nil, err
		}
		if len(args) != 2 {
			return nil, fmt.Errorf("%s expects 2 arguments, got %d", op, len(args))
		}
		field := strings.TrimSpace(args[0])
		if field == "" {
			return nil, fmt.Errorf("%s has an empty field name", op)
		}
		value, err := parseOperand(strings.TrimSpace(args[1]))
		if err != nil {
			return nil, err
		}
		switch op {
		case "EQUALS":
			return &EqualsExpr{Field: field, Value: value}, nil
		case "NOT_EQUALS":
			return &NotEqualsExpr{Field: field, Value: value}, nil
		default:
			return &ListContainsExpr{Field: field, Value: value}, nil
		}
	case "OR":
		parts, err := splitConditionArgs(body, ';')
		if err != nil {
			return nil, err
		}
		or := &OrExpr{}
		for _, part := range parts {
			sub, err := ParseCondition(part)
			if err != nil {
				return nil, err
			}
			or.Exprs = append(or.Exprs, sub)
		}
		if len(or.Exprs) == 0 {
			return nil, fmt.Errorf("OR has no branches")
		}
		return or, nil
	default:
		return nil, fmt.Errorf("unknown condition operator: %s", op)
	}
}

func parseOperand(s string) (any, error) {
	switch {
	case s == "null":
		return nil, nil
	case strings.HasPrefix(s, "$."):
		name := s[2:]
		if name == "" {
			return nil, fmt.Errorf("empty field reference")
		}
		return FieldRef(name), nil
	case len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"':
		return s[1 : len(s)-1], nil
	case s == "":
		return nil, fmt.Errorf("empty operand")
	default:
		return s, nil
	}
}

// splitConditionArgs splits on sep at the top level, honoring nested
// parentheses and double quotes.
func splitConditionArgs(s string, sep byte) ([]string, error) {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '(':
			depth++
		case c == ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("unbalanced parentheses in condition: %s", s)
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	if depth != 0 || inQuote {
		return nil, fmt.Errorf("unbalanced condition: %s", s)
	}
	parts = append(parts, s[start:])
	return parts, nil
}
