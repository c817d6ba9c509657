package authz

// Condition constructor helpers, used by the shipped table and tests.

func Equals(field string, value any) Expr    { return &EqualsExpr{Field: field, Value: value} }
func NotEquals(field string, value any) Expr { return &NotEqualsExpr{Field: field, Value: value} }

func ListContains(field string, value any) Expr {
	return &ListContainsExpr{Field: field, Value: value}
}

func Or(exprs ...Expr) Expr { return &OrExpr{Exprs: exprs} }

// Ref marks an operand as a reference to another request field.
func Ref(field string) FieldRef { return FieldRef(field) }

// GrantBuilder builds a Grant fluently.
type GrantBuilder struct {
	grant Grant
}

func NewGrant(resource Entity) *GrantBuilder {
	return &GrantBuilder{grant: Grant{Resource: resource}}
}

// Allow adds actions to the grant. Without any call the grant matches
// every action.
func (b *GrantBuilder) Allow(actions ...Action) *GrantBuilder {
	b.grant.Actions = append(b.grant.Actions, actions...)
	return b
}

// When guards the grant with a condition.
func (b *GrantBuilder) When(cond Expr) *GrantBuilder {
	b.grant.Condition = cond
	return b
}

func (b *GrantBuilder) Build() Grant { return b.grant }

// GroupBuilder assembles a group definition.
type GroupBuilder struct {
	def GroupDefinition
}

func NewGroup() *GroupBuilder { return &GroupBuilder{} }

func (b *GroupBuilder) Extends(groups ...RoleGroup) *GroupBuilder {
	b.def.Extends = append(b.def.Extends, groups...)
	return b
}

func (b *GroupBuilder) Grant(grants ...Grant) *GroupBuilder {
	b.def.Grants = append(b.def.Grants, grants...)
	return b
}

func (b *GroupBuilder) Build() GroupDefinition { return b.def }
