package authz

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by stores when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrTagAlreadyAssigned is returned by UserStore.CreateUser when the
// badge tag is already bound to another user.
var ErrTagAlreadyAssigned = errors.New("tag already assigned")

// AuthorizationError reports a denied operation that surfaces as an
// error rather than a false predicate: charging-station flows where the
// caller needs the reason and the involved user.
type AuthorizationError struct {
	TenantID string
	UserID   string
	Resource Entity
	Action   Action
	Module   string
	Method   string
	Message  string
	// User is set when the request provisioned or resurrected a badge
	// user before being rejected.
	User *User
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("%s.%s: not authorized to %s %s: %s", e.Module, e.Method, e.Action, e.Resource, e.Message)
}

// StructuralError reports broken organization data encountered during a
// check: a charging station without a site area, a site area without a
// site, an unknown tenant. It is never a deniable request.
type StructuralError struct {
	TenantID          string
	ChargingStationID string
	Module            string
	Method            string
	Message           string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Module, e.Method, e.Message)
}

// IsAuthorizationError reports whether err is a rule denial.
func IsAuthorizationError(err error) bool {
	var ae *AuthorizationError
	return errors.As(err, &ae)
}

// IsStructuralError reports whether err is broken organization data.
func IsStructuralError(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
