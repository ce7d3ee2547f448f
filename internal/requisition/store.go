// server/internal/requisition/store.go
package requisition

import (
	"context"
	"errors"
	"time"

	"requisas-api-server/internal/models"
)

var (
	// ErrNotFound indica que la requisición o el ítem referenciado no existe.
	ErrNotFound = errors.New("requisition: not found")
	// ErrNoItems indica una creación sin líneas.
	ErrNoItems = errors.New("requisition: at least one item is required")
	// ErrBadQuantity indica una cantidad no positiva en la creación o una
	// cantidad negativa en una decisión de aprobación.
	ErrBadQuantity = errors.New("requisition: invalid quantity")
	// ErrCodeConflict indica una colisión del código generado. Con el
	// contador diario atómico no debería ocurrir; el índice único sobre
	// "code" es el respaldo. El caller puede reintentar la creación.
	ErrCodeConflict = errors.New("requisition: code already exists")
)

// Actor es el usuario autenticado que ejecuta la operación. El núcleo confía
// en el rol que recibe; el gateo por rol ocurre en el middleware.
type Actor struct {
	ID   string
	Name string
	Role string
}

// Clock abstrae "ahora" para que los tests controlen los timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Store es la costura de persistencia del motor de requisiciones. Todas las
// operaciones respetan el context que reciben; dentro de WithinTx ese context
// liga la operación a la transacción.
type Store interface {
	// WithinTx ejecuta fn como una unidad atómica: o todos los efectos
	// quedan persistidos o ninguno.
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error

	// NextDailySequence devuelve el siguiente valor (base 1) del contador
	// del día indicado, de forma atómica.
	NextDailySequence(ctx context.Context, day string) (int64, error)

	GetInventoryItemBySKU(ctx context.Context, sku string) (*models.InventoryItem, error)

	// DecrementStock baja el stock del ítem en qty, con piso en cero.
	// Si el ítem ya no existe es un no-op.
	DecrementStock(ctx context.Context, sku string, qty float64, now time.Time) error

	InsertRequisition(ctx context.Context, req *models.Requisition) error
	GetRequisitionByCode(ctx context.Context, code string) (*models.Requisition, error)

	// SaveApprovalOutcome persiste el resultado completo de una decisión:
	// status, qtyApproved de todas las líneas, historial de aprobaciones y
	// updatedAt.
	SaveApprovalOutcome(ctx context.Context, req *models.Requisition) error
}
