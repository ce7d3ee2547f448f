package requisition

import (
	"context"
	"sync"
	"time"

	"requisas-api-server/internal/models"
)

// memoryStore es un Store en memoria para los tests del motor. WithinTx
// serializa con un mutex y guarda un snapshot del estado: si fn falla, el
// estado vuelve atrás completo, igual que una transacción real.
type memoryStore struct {
	mu           sync.Mutex
	counters     map[string]int64
	items        map[string]*models.InventoryItem // por sku
	requisitions map[string]*models.Requisition   // por code

	// failSaveOutcome fuerza un error en SaveApprovalOutcome para probar
	// que la transacción no deja efectos parciales.
	failSaveOutcome bool
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		counters:     make(map[string]int64),
		items:        make(map[string]*models.InventoryItem),
		requisitions: make(map[string]*models.Requisition),
	}
}

func (s *memoryStore) seedItem(sku, description string, stock float64, unit string) {
	s.items[sku] = &models.InventoryItem{SKU: sku, Description: description, Stock: stock, Unit: unit}
}

func (s *memoryStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemsSnap := make(map[string]*models.InventoryItem, len(s.items))
	for k, v := range s.items {
		cp := *v
		itemsSnap[k] = &cp
	}
	reqsSnap := make(map[string]*models.Requisition, len(s.requisitions))
	for k, v := range s.requisitions {
		reqsSnap[k] = cloneRequisition(v)
	}
	countersSnap := make(map[string]int64, len(s.counters))
	for k, v := range s.counters {
		countersSnap[k] = v
	}

	if err := fn(ctx); err != nil {
		s.items = itemsSnap
		s.requisitions = reqsSnap
		s.counters = countersSnap
		return err
	}
	return nil
}

func (s *memoryStore) NextDailySequence(ctx context.Context, day string) (int64, error) {
	s.counters[day]++
	return s.counters[day], nil
}

func (s *memoryStore) GetInventoryItemBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	item, ok := s.items[sku]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *memoryStore) DecrementStock(ctx context.Context, sku string, qty float64, now time.Time) error {
	item, ok := s.items[sku]
	if !ok {
		return nil
	}
	item.Stock = item.Stock - qty
	if item.Stock < 0 {
		item.Stock = 0
	}
	item.UpdatedAt = now
	return nil
}

func (s *memoryStore) InsertRequisition(ctx context.Context, req *models.Requisition) error {
	if _, exists := s.requisitions[req.Code]; exists {
		return ErrCodeConflict
	}
	s.requisitions[req.Code] = cloneRequisition(req)
	return nil
}

func (s *memoryStore) GetRequisitionByCode(ctx context.Context, code string) (*models.Requisition, error) {
	req, ok := s.requisitions[code]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneRequisition(req), nil
}

func (s *memoryStore) SaveApprovalOutcome(ctx context.Context, req *models.Requisition) error {
	if s.failSaveOutcome {
		return errTxBoom
	}
	if _, ok := s.requisitions[req.Code]; !ok {
		return ErrNotFound
	}
	s.requisitions[req.Code] = cloneRequisition(req)
	return nil
}

// stock lee el stock actual de un ítem, para las aserciones.
func (s *memoryStore) stock(sku string) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[sku].Stock
}

func cloneRequisition(r *models.Requisition) *models.Requisition {
	cp := *r
	cp.Items = make([]models.RequisitionItem, len(r.Items))
	copy(cp.Items, r.Items)
	for i := range cp.Items {
		if r.Items[i].QtyApproved != nil {
			q := *r.Items[i].QtyApproved
			cp.Items[i].QtyApproved = &q
		}
	}
	cp.Approvals = append([]models.Approval(nil), r.Approvals...)
	cp.Attachments = append([]models.MediaPointer(nil), r.Attachments...)
	return &cp
}
