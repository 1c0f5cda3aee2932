package domain

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity models the authenticated actor. Role is an open string enum owned
// by the backend; only RoleAdmin carries special meaning client-side.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role"`
}

// Valid reports whether the identity payload is usable. A persisted or
// received identity without a username cannot drive permission evaluation
// and is treated as malformed.
func (i *Identity) Valid() bool {
	return i != nil && i.Username != ""
}
