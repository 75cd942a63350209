package domain

// Identity is a caller verified from a bearer credential.
// It is the only source of document ownership and search scope.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// IsZero reports whether the identity carries no user.
func (i Identity) IsZero() bool { return i.UserID == "" }
