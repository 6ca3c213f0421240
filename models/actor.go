package models

// Actor the authenticated caller performing an operation
type Actor struct {
	// ID user ID
	ID string `json:"id" validate:"required"`
	// Name display name
	Name string `json:"name,omitempty"`
	// Role user role
	Role string `json:"role,omitempty"`
}

// NamePtr display name, nil when unknown
func (a Actor) NamePtr() *string {
	if a.Name == "" {
		return nil
	}
	name := a.Name
	return &name
}

// RolePtr role, nil when unknown
func (a Actor) RolePtr() *string {
	if a.Role == "" {
		return nil
	}
	role := a.Role
	return &role
}
