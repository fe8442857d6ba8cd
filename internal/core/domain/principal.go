package domain

// Principal is the resolved identity of an authenticated caller. It lives
// only for the duration of one request.
type Principal struct {
	UserID   int64
	FullName string
	Email    string
	Role     Role
	Active   bool
}

// HasAnyRole reports whether the principal's role is in roles.
func (p Principal) HasAnyRole(roles ...Role) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}
