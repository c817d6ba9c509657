package authz

import "fmt"

// Can reports whether any of the actor's groups holds a grant allowing
// the action on the resource under the given request fields. An
// unconditioned grant wins immediately; otherwise any satisfied
// condition allows. Absence of a matching grant, or no satisfied
// condition, is an ordinary deny.
func (ac *AccessControl) Can(groups []RoleGroup, resource Entity, action Action, fields FieldContext) bool {
	var conditions []Expr
	for _, group := range groups {
		for _, grant := range ac.resolved[group] {
			if grant.Resource != resource || !grant.matchesAction(action) {
				continue
			}
			if grant.Condition == nil {
				return true
			}
			conditions = append(conditions, grant.Condition)
		}
	}
	for _, cond := range conditions {
		if cond.Evaluate(fields) {
			return true
		}
	}
	return false
}

// Explain walks the same decision path as Can but records one line per
// considered grant. Meant for support tooling, not the hot path.
func (ac *AccessControl) Explain(groups []RoleGroup, resource Entity, action Action, fields FieldContext) (bool, []string) {
	trace := []string{fmt.Sprintf("resolve %s %s for groups %v", resource, action, groups)}
	allowed := false
	for _, group := range groups {
		matched := 0
		for _, grant := range ac.resolved[group] {
			if grant.Resource != resource || !grant.matchesAction(action) {
				continue
			}
			matched++
			if grant.Condition == nil {
				trace = append(trace, fmt.Sprintf("group %s: unconditional grant -> allow", group))
				allowed = true
				continue
			}
			ok := grant.Condition.Evaluate(fields)
			trace = append(trace, fmt.Sprintf("group %s: condition %s -> %t", group, grant.Condition, ok))
			if ok {
				allowed = true
			}
		}
		if matched == 0 {
			trace = append(trace, fmt.Sprintf("group %s: no matching grant", group))
		}
	}
	if allowed {
		trace = append(trace, "decision: allow")
	} else {
		trace = append(trace, "decision: deny")
	}
	return allowed, trace
}
