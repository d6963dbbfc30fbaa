package domain

import "strings"

// Role роль пользователя, определяемая внешним слоем аутентификации
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleMechanic   Role = "MECANICO"
	RoleDriver     Role = "CHOFER"
	RoleGuard      Role = "GUARDIA"
	RoleWarehouse  Role = "BODEGA"
	RoleEHS        Role = "EHS"
)

var knownRoles = map[Role]bool{
	RoleAdmin:      true,
	RoleSupervisor: true,
	RoleMechanic:   true,
	RoleDriver:     true,
	RoleGuard:      true,
	RoleWarehouse:  true,
	RoleEHS:        true,
}

// ParseRole разбирает роль без учета регистра
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, knownRoles[r]
}

// Actor тот, кто выполняет операцию (для журнала и проверок прав)
type Actor struct {
	ID   int64
	Role Role
}
