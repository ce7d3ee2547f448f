// server/internal/requisition/service.go
package requisition

import (
	"context"
	"fmt"

	"requisas-api-server/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemInput es un par (sku, cantidad solicitada) de la creación.
type ItemInput struct {
	SKU string
	Qty float64
}

// CreateInput agrupa los datos de una nueva requisición.
type CreateInput struct {
	AreaCode    string
	MachineCode string
	Note        string
	Items       []ItemInput
}

// Service orquesta el ciclo de vida de las requisiciones sobre un Store.
type Service struct {
	store  Store
	logger *zap.Logger
	clock  Clock
}

// NewService arma el servicio. logger y clock pueden ser nil (se usa un
// logger no-op y el reloj del sistema).
func NewService(store Store, logger *zap.Logger, clock Clock) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = systemClock{}
	}
	return &Service{store: store, logger: logger, clock: clock}
}

// Create valida la entrada, genera el código del día y persiste la
// requisición en estado pending, todo dentro de una transacción. Los SKU que
// no resuelven se omiten en silencio (política heredada para tolerar listas
// de ítems desactualizadas en el cliente) pero se devuelven en skipped para
// que el caller los reporte. No se muta inventario en esta etapa.
func (s *Service) Create(ctx context.Context, requester Actor, in CreateInput) (*models.Requisition, []ItemInput, error) {
	if len(in.Items) == 0 {
		return nil, nil, ErrNoItems
	}
	for _, it := range in.Items {
		if it.Qty <= 0 {
			return nil, nil, fmt.Errorf("%w: sku %s qty %v", ErrBadQuantity, it.SKU, it.Qty)
		}
	}

	now := s.clock.Now()
	var req *models.Requisition
	var skipped []ItemInput

	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		// Reset por si la transacción se reintenta.
		skipped = nil

		seq, err := s.store.NextDailySequence(ctx, DayKey(now))
		if err != nil {
			return err
		}

		lines := []models.RequisitionItem{}
		for _, it := range in.Items {
			inv, err := s.store.GetInventoryItemBySKU(ctx, it.SKU)
			if err == ErrNotFound {
				skipped = append(skipped, it)
				continue
			}
			if err != nil {
				return err
			}
			lines = append(lines, models.RequisitionItem{
				LineID:       uuid.New().String()[:8],
				SKU:          inv.SKU,
				Description:  inv.Description,
				Unit:         inv.Unit,
				QtyRequested: it.Qty,
			})
		}

		req = &models.Requisition{
			Code:          FormatCode(now, seq),
			RequesterID:   requester.ID,
			RequesterName: requester.Name,
			AreaCode:      in.AreaCode,
			MachineCode:   in.MachineCode,
			Status:        models.StatusPending,
			Note:          in.Note,
			Items:         lines,
			Approvals:     []models.Approval{},
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		return s.store.InsertRequisition(ctx, req)
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("requisition created",
		zap.String("code", req.Code),
		zap.String("requester", requester.ID),
		zap.Int("lines", len(req.Items)),
		zap.Int("skipped", len(skipped)),
	)
	return req, skipped, nil
}

// Process aplica una decisión de aprobación sobre la requisición.
//
// Reglas del motor:
//   - Siempre se agrega exactamente un registro Approval, también en rechazos.
//   - Cada línea toma su cantidad del mapa decisions; una línea ausente vale 0
//     (aprobación implícita en cero; la omisión cuenta como parcial).
//   - Solo si approved es true y la cantidad es positiva se descuenta stock,
//     con piso en cero. Un rechazo nunca toca inventario.
//   - approved=false => rejected; alguna línea por debajo de lo solicitado =>
//     partially_approved; si no, approved.
//   - Reprocesar una requisición ya terminal no se bloquea aquí: las
//     cantidades se sobreescriben y se acumula otro Approval. Guardar contra
//     doble proceso es responsabilidad del caller.
//
// Todo corre dentro de una sola transacción; si algo falla no queda ningún
// efecto parcial.
func (s *Service) Process(ctx context.Context, code string, approver Actor, decisions map[string]float64, approved bool, comment string) (*models.Requisition, error) {
	for lineID, qty := range decisions {
		if qty < 0 {
			return nil, fmt.Errorf("%w: line %s qty %v", ErrBadQuantity, lineID, qty)
		}
	}

	now := s.clock.Now()
	var req *models.Requisition

	err := s.store.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		req, err = s.store.GetRequisitionByCode(ctx, code)
		if err != nil {
			return err
		}

		req.Approvals = append(req.Approvals, models.Approval{
			ApproverID:   approver.ID,
			ApproverName: approver.Name,
			Approved:     approved,
			Comment:      comment,
			Timestamp:    now,
		})

		anyPartial := false
		for i := range req.Items {
			line := &req.Items[i]
			qty := decisions[line.LineID] // ausente => 0
			q := qty
			line.QtyApproved = &q

			if approved && qty > 0 {
				if err := s.store.DecrementStock(ctx, line.SKU, qty, now); err != nil {
					return err
				}
			}
			if qty < line.QtyRequested {
				anyPartial = true
			}
		}

		switch {
		case !approved:
			req.Status = models.StatusRejected
		case anyPartial:
			req.Status = models.StatusPartiallyApproved
		default:
			req.Status = models.StatusApproved
		}
		req.UpdatedAt = now

		return s.store.SaveApprovalOutcome(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("requisition processed",
		zap.String("code", req.Code),
		zap.String("approver", approver.ID),
		zap.Bool("approved", approved),
		zap.String("status", req.Status),
	)
	return req, nil
}
