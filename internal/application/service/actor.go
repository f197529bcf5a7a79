package service

import (
	"github.com/google/uuid"
	"github.com/sangkips/clinic-api/internal/domain/entity"
)

// Actor identifies the authenticated user performing an operation
type Actor struct {
	UserID uuid.UUID
	Roles  []string
}

// HasRole reports whether the actor holds any of the given roles
func (a Actor) HasRole(roles ...string) bool {
	for _, have := range a.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

// IsAdmin reports whether the actor administers clinic records
func (a Actor) IsAdmin() bool {
	return a.HasRole(entity.RoleAdmin, entity.RoleSuperAdmin)
}
