package pets

import (
	"context"
	"time"

	"pet-guardianship/internal/domain/paging"
)

// Repository es el puerto de persistencia de mascotas. Misma semántica que users.Repository:
// GetByID ve bajas lógicas, Update/SoftDelete solo filas activas.
type Repository interface {
	Create(ctx context.Context, p Pet) (Pet, error)
	GetByID(ctx context.Context, id int64) (Pet, error)
	Update(ctx context.Context, p Pet) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, w paging.Window) ([]Pet, error)
}
