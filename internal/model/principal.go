package model

import "github.com/google/uuid"

type UserRole string

const (
	UserRoleAdmin UserRole = "admin"
	UserRoleStaff UserRole = "staff"
)

type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   UserRole
}

func (p Principal) IsAdmin() bool {
	return p.Role == UserRoleAdmin
}

func (p Principal) CanManageQuotes() bool {
	return p.Role == UserRoleAdmin || p.Role == UserRoleStaff
}

func (p Principal) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return string(p.Role)
}
