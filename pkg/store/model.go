package store

import "slices"

// Organization is the tenant a user belongs to.
type Organization struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// Company is a bookkeeping entity the user can work in.
type Company struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

// User is the authenticated profile as returned by users/me.
type User struct {
	ID           string       `json:"id"`
	Email        string       `json:"email"`
	Username     string       `json:"username"`
	FullName     string       `json:"full_name"`
	IsActive     bool         `json:"is_active"`
	IsSuperuser  bool         `json:"is_superuser"`
	Companies    []Company    `json:"companies"`
	Organization Organization `json:"organization"`
	Roles        []string     `json:"roles"`
	Permissions  []string     `json:"permissions"`
}

// Company returns a pointer into the user's company list, or nil.
func (u *User) Company(id string) *Company {
	if u == nil || id == "" {
		return nil
	}
	for i := range u.Companies {
		if u.Companies[i].ID == id {
			return &u.Companies[i]
		}
	}
	return nil
}

// HasPermission reports whether the profile carries the named permission.
func (u *User) HasPermission(name string) bool {
	return u != nil && slices.Contains(u.Permissions, name)
}

// HasRole reports whether the profile carries the named role.
func (u *User) HasRole(name string) bool {
	return u != nil && slices.Contains(u.Roles, name)
}

// clone deep-copies the user so the store never shares slices with callers.
func (u *User) clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Companies = slices.Clone(u.Companies)
	c.Roles = slices.Clone(u.Roles)
	c.Permissions = slices.Clone(u.Permissions)
	return &c
}
