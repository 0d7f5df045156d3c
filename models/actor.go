package models

// ActorKind tags which principal kind performed an action.
type ActorKind int

const (
	ActorUser ActorKind = iota + 1
	ActorAdmin
)

// Actor is a tagged union over the two principal kinds. It replaces the pair
// of nullable user/admin id columns at call sites so that exactly one side is
// ever written.
type Actor struct {
	Kind ActorKind
	ID   uint
}

// UserActor returns an Actor for an end user.
func UserActor(id uint) Actor { return Actor{Kind: ActorUser, ID: id} }

// AdminActor returns an Actor for an admin.
func AdminActor(id uint) Actor { return Actor{Kind: ActorAdmin, ID: id} }

// UserID returns the user id column value for this actor, nil when the actor
// is an admin.
func (a Actor) UserID() *uint {
	if a.Kind == ActorUser {
		id := a.ID
		return &id
	}
	return nil
}

// AdminID returns the admin id column value for this actor, nil when the
// actor is a user.
func (a Actor) AdminID() *uint {
	if a.Kind == ActorAdmin {
		id := a.ID
		return &id
	}
	return nil
}

// IsAdmin reports whether the actor is an admin principal.
func (a Actor) IsAdmin() bool { return a.Kind == ActorAdmin }
