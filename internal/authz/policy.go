package authz

import "chrona/internal/apperrors"

// Actor is the identity behind a request. The zero value is anonymous.
type Actor struct {
	UserID string
}

func Anonymous() Actor { return Actor{} }

func User(id string) Actor { return Actor{UserID: id} }

func (a Actor) IsAnonymous() bool { return a.UserID == "" }

// Operation is what an actor wants to do with a task or time entry.
type Operation int

const (
	OpList Operation = iota
	OpRead
	OpCreate
	OpUpdate
	OpDelete
	OpStats
)

func (op Operation) String() string {
	switch op {
	case OpList:
		return "list"
	case OpRead:
		return "read"
	case OpCreate:
		return "create"
	case OpUpdate:
		return "update"
	case OpDelete:
		return "delete"
	case OpStats:
		return "stats"
	}
	return "unknown"
}

// Check decides whether actor may perform op on a resource owned by owner (nil for
// unowned resources). Unowned resources stay readable and mutable by anyone, and
// requests without an actor are not ownership-checked; both keep older clients working.
func Check(actor Actor, owner *string, op Operation) error {
	switch op {
	case OpCreate, OpStats:
		if actor.IsAnonymous() {
			return apperrors.Unauthorized("authentication required to %s", op)
		}
		return nil
	case OpList:
		return nil
	case OpRead, OpUpdate, OpDelete:
		if owner == nil || actor.IsAnonymous() || *owner == actor.UserID {
			return nil
		}
		return apperrors.Forbidden("not allowed to %s a resource owned by another user", op)
	}
	return apperrors.Forbidden("unknown operation")
}

// ListScope returns the owner a list must be restricted to. ok is false for
// anonymous actors, who see every resource.
func ListScope(actor Actor) (ownerID string, ok bool) {
	if actor.IsAnonymous() {
		return "", false
	}
	return actor.UserID, true
}

// Visible reports whether a resource with owner appears in actor's lists.
func Visible(actor Actor, owner *string) bool {
	scope, ok := ListScope(actor)
	if !ok {
		return true
	}
	return owner != nil && *owner == scope
}
