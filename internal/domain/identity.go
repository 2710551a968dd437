package domain

// Identity is the caller as established by the auth collaborator. It is passed by value
// and never mutated by the core.
type Identity struct {
	UserID int64
	Role   Role
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

func (id Identity) Authenticated() bool {
	return id.UserID > 0
}
