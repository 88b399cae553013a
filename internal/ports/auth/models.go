package auth

import "strings"

// Role del voluntario dentro de la organización.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleGeneral Role = "general"
)

// ParseRole normaliza el rol; cualquier valor desconocido queda como general.
func ParseRole(s string) Role {
	if strings.EqualFold(strings.TrimSpace(s), string(RoleAdmin)) {
		return RoleAdmin
	}
	return RoleGeneral
}

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Name   string
	Email  string
	Role   Role
}

// Actor es quien ejecuta una operación de dominio.
type Actor struct {
	ID   string
	Role Role
}

func (c Claims) Actor() Actor {
	return Actor{ID: strings.TrimSpace(c.UserID), Role: ParseRole(string(c.Role))}
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
