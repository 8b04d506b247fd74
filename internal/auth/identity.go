package auth

// Identity is the resolved caller: either a session user or a guest resolved
// from a device token, never both.
type Identity struct {
	UserID  *uint
	GuestID *uint
}

func UserIdentity(id uint) Identity  { return Identity{UserID: &id} }
func GuestIdentity(id uint) Identity { return Identity{GuestID: &id} }

// IsZero reports whether no identity could be resolved at all.
func (i Identity) IsZero() bool {
	return i.UserID == nil && i.GuestID == nil
}
