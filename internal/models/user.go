package models

import "time"

// User represents a staff account stored in the users table. Role and
// department names are joined in by the repository.
type User struct {
	ID           int64     `db:"id" json:"id"`
	EmpID        string    `db:"emp_id" json:"emp_id"`
	Username     string    `db:"username" json:"username"`
	FullName     string    `db:"full_name" json:"full_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	RoleID       int64     `db:"role_id" json:"role_id"`
	DepartmentID *int64    `db:"department_id" json:"department_id"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`

	RoleName        string  `db:"role_name" json:"-"`
	RoleDescription *string `db:"role_description" json:"-"`
	DepartmentName  *string `db:"department_name" json:"-"`

	Role       *RoleRef       `db:"-" json:"role"`
	Department *DepartmentRef `db:"-" json:"department"`
}

// RoleRef is the compact role embedded in user payloads.
type RoleRef struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// DepartmentRef is the compact department embedded in user payloads.
type DepartmentRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Hydrate fills the nested references from the joined columns.
func (u *User) Hydrate() {
	if u == nil {
		return
	}
	u.Role = nil
	if u.RoleID != 0 {
		u.Role = &RoleRef{ID: u.RoleID, Name: u.RoleName, Description: u.RoleDescription}
	}
	u.Department = nil
	if u.DepartmentID != nil && u.DepartmentName != nil {
		u.Department = &DepartmentRef{ID: *u.DepartmentID, Name: *u.DepartmentName}
	}
}

// HasAnyRole reports whether the user's role name is one of roles. An empty
// list admits every user.
func (u *User) HasAnyRole(roles ...string) bool {
	if u == nil {
		return false
	}
	if len(roles) == 0 {
		return true
	}
	for _, role := range roles {
		if role == u.RoleName {
			return true
		}
	}
	return false
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	RoleID       *int64
	DepartmentID *int64
	IsActive     *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}
