package users

import (
	"context"
	"time"

	"pet-guardianship/internal/domain/paging"
)

// Repository es el puerto de persistencia de usuarios.
// GetByID devuelve también usuarios dados de baja; Update y SoftDelete solo tocan activos
// y devuelven NotFound si no hay fila que cumpla.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	Update(ctx context.Context, u User) error
	SoftDelete(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, w paging.Window) ([]User, error)
}
