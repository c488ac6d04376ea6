package persons

import "time"

// Role define la capacidad de una persona en el sistema.
// Ciudadanos y personal municipal comparten la misma entidad; el rol es
// lo único que distingue qué operaciones pueden ejecutar.
type Role string

const (
	RoleCitizen       Role = "citizen"
	RoleAdmin         Role = "admin"
	RoleFieldTracking Role = "field_tracking" // personal de seguimiento en campo
	RoleSuperAdmin    Role = "super_admin"
)

// CanBeAssignedReports indica si la persona puede recibir reportes asignados.
func (r Role) CanBeAssignedReports() bool {
	return r == RoleFieldTracking
}

// IsAdmin indica si el rol habilita operaciones administrativas
// (asignar/desasignar/cerrar reportes, alta de personal).
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// IsStaff indica si el rol corresponde a personal municipal.
func (r Role) IsStaff() bool {
	return r != RoleCitizen && r != ""
}

// Person representa a un ciudadano o a personal municipal.
type Person struct {
	ID string

	Name     string
	Document string // DNI
	Phone    string
	Email    string

	Role Role

	CreatedAt time.Time
	UpdatedAt time.Time
}
