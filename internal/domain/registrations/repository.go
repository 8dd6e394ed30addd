package registrations

import (
	"context"
	"time"

	"pet-guardianship/internal/domain/paging"
)

// Repository es el puerto del ledger. Las implementaciones garantizan la invariante de
// un solo guardián activo por mascota en el propio store (índice único parcial o escritura
// condicional), nunca con un lock del proceso.
//
// Errores esperados (apperr):
//   - Insert: NotFound si user o pet no existen o están dados de baja; Conflict si la
//     mascota ya tiene una registración activa.
//   - Release: NotFound si no hay registración activa para (pet, user);
//     InternalInconsistency si la actualización tocaría más de una fila.
//
// Los listados devuelven a lo sumo w.Fetch() filas en orden NewerFirst, después del
// registro w.After si w.HasAfter, y excluyen filas cuya otra entidad está dada de baja.
type Repository interface {
	Insert(ctx context.Context, petID, userID int64, at time.Time) (Registration, error)
	Release(ctx context.Context, petID, userID int64, at time.Time) (Registration, error)

	ActiveByPet(ctx context.Context, petID int64) (Registration, bool, error)
	PetsByUser(ctx context.Context, userID int64, activeOnly bool, w paging.Window) ([]PetEntry, error)
	UsersByPet(ctx context.Context, petID int64, w paging.Window) ([]UserEntry, error)
	List(ctx context.Context, f Filter, w paging.Window) ([]Registration, error)
}
