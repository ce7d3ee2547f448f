package requisition

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"requisas-api-server/internal/models"
)

var errTxBoom = errors.New("storage failure")

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

var (
	testNow       = time.Date(2025, 9, 1, 10, 0, 0, 0, time.UTC)
	supervisor    = Actor{ID: "supervisor1", Name: "Supervisor Uno", Role: models.RoleSupervisor}
	warehouseUser = Actor{ID: "bodega1", Name: "Bodega Uno", Role: models.RoleWarehouse}
)

func newTestService(store *memoryStore) *Service {
	return NewService(store, nil, fixedClock{t: testNow})
}

func mustCreate(t *testing.T, svc *Service, items []ItemInput) *models.Requisition {
	t.Helper()
	req, _, err := svc.Create(context.Background(), supervisor, CreateInput{Items: items})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return req
}

func TestCreate_StartsPendingWithExactQuantities(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 50, "un")
	store.seedItem("SKU-002", "Tornillo M8", 1000, "pcs")
	svc := newTestService(store)

	req, skipped, err := svc.Create(context.Background(), supervisor, CreateInput{
		AreaCode: "A1",
		Note:     "repuesto urgente",
		Items: []ItemInput{
			{SKU: "SKU-001", Qty: 3},
			{SKU: "SKU-002", Qty: 12.5},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if req.Code != "REQ-20250901-0001" {
		t.Errorf("code = %s, want REQ-20250901-0001", req.Code)
	}
	if req.Status != models.StatusPending {
		t.Errorf("status = %s, want pending", req.Status)
	}
	if len(skipped) != 0 {
		t.Errorf("expected no skipped items, got %d", len(skipped))
	}
	if len(req.Items) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(req.Items))
	}
	if req.Items[0].QtyRequested != 3 || req.Items[1].QtyRequested != 12.5 {
		t.Errorf("qtyRequested not copied verbatim: %v, %v", req.Items[0].QtyRequested, req.Items[1].QtyRequested)
	}
	for _, line := range req.Items {
		if line.QtyApproved != nil {
			t.Errorf("line %s has qtyApproved before any decision", line.LineID)
		}
		if line.LineID == "" {
			t.Error("line is missing its lineID")
		}
	}

	// La creación no reserva ni descuenta stock.
	if got := store.stock("SKU-001"); got != 50 {
		t.Errorf("stock changed on create: %v", got)
	}
}

func TestCreate_ValidatesBeforePersisting(t *testing.T) {
	tests := []struct {
		name    string
		items   []ItemInput
		wantErr error
	}{
		{name: "no_items", items: nil, wantErr: ErrNoItems},
		{name: "zero_qty", items: []ItemInput{{SKU: "SKU-001", Qty: 0}}, wantErr: ErrBadQuantity},
		{name: "negative_qty", items: []ItemInput{{SKU: "SKU-001", Qty: -2}}, wantErr: ErrBadQuantity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newMemoryStore()
			store.seedItem("SKU-001", "Filtro", 50, "un")
			svc := newTestService(store)

			_, _, err := svc.Create(context.Background(), supervisor, CreateInput{Items: tt.items})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if len(store.requisitions) != 0 {
				t.Error("validation failure must not persist anything")
			}
		})
	}
}

func TestCreate_SkipsUnknownSKUsButReportsThem(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 50, "un")
	svc := newTestService(store)

	req, skipped, err := svc.Create(context.Background(), supervisor, CreateInput{
		Items: []ItemInput{
			{SKU: "SKU-001", Qty: 2},
			{SKU: "SKU-FANTASMA", Qty: 7},
		},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if len(req.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(req.Items))
	}
	if len(skipped) != 1 || skipped[0].SKU != "SKU-FANTASMA" || skipped[0].Qty != 7 {
		t.Fatalf("skipped = %+v, want the unresolved input reported back", skipped)
	}
}

func TestCreate_DailySequenceIncrements(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 50, "un")
	svc := newTestService(store)

	first := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 1}})
	second := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 1}})

	if first.Code != "REQ-20250901-0001" || second.Code != "REQ-20250901-0002" {
		t.Errorf("codes = %s, %s; want consecutive daily sequence", first.Code, second.Code)
	}
}

func TestProcess_FullGrantApproves(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 10, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 3}})

	decisions := map[string]float64{req.Items[0].LineID: 3}
	got, err := svc.Process(context.Background(), req.Code, warehouseUser, decisions, true, "OK")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved", got.Status)
	}
	if got.Items[0].QtyApproved == nil || *got.Items[0].QtyApproved != 3 {
		t.Errorf("qtyApproved = %v, want 3", got.Items[0].QtyApproved)
	}
	if stock := store.stock("SKU-001"); stock != 7 {
		t.Errorf("stock = %v, want 7", stock)
	}
	if len(got.Approvals) != 1 {
		t.Fatalf("expected exactly 1 approval record, got %d", len(got.Approvals))
	}
	if a := got.Approvals[0]; !a.Approved || a.ApproverID != "bodega1" || a.Comment != "OK" {
		t.Errorf("approval record = %+v", a)
	}
}

func TestProcess_PartialGrant(t *testing.T) {
	// Escenario de referencia: stock=10, solicitado 3, se aprueban 2.
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 10, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 3}})

	got, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{req.Items[0].LineID: 2}, true, "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got.Status != models.StatusPartiallyApproved {
		t.Errorf("status = %s, want partially_approved", got.Status)
	}
	if stock := store.stock("SKU-001"); stock != 8 {
		t.Errorf("stock = %v, want 8", stock)
	}
}

func TestProcess_OmittedLineMeansZero(t *testing.T) {
	// Dos líneas de 5 sobre el mismo ítem con stock 6; se aprueba solo la
	// primera. La omitida vale cero y fuerza el estado parcial.
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 6, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{
		{SKU: "SKU-001", Qty: 5},
		{SKU: "SKU-001", Qty: 5},
	})

	got, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{req.Items[0].LineID: 5}, true, "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got.Status != models.StatusPartiallyApproved {
		t.Errorf("status = %s, want partially_approved", got.Status)
	}
	if got.Items[1].QtyApproved == nil || *got.Items[1].QtyApproved != 0 {
		t.Errorf("omitted line qtyApproved = %v, want 0", got.Items[1].QtyApproved)
	}
	if stock := store.stock("SKU-001"); stock != 1 {
		t.Errorf("stock = %v, want 1", stock)
	}
}

func TestProcess_RejectionNeverTouchesStock(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 10, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 4}})

	// Rechazo con decisions no vacío: las cantidades propuestas quedan
	// registradas en las líneas, pero el inventario no se mueve.
	got, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{req.Items[0].LineID: 4}, false, "sin presupuesto")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got.Status != models.StatusRejected {
		t.Errorf("status = %s, want rejected", got.Status)
	}
	if got.Items[0].QtyApproved == nil || *got.Items[0].QtyApproved != 4 {
		t.Errorf("qtyApproved = %v, want the proposed 4 recorded", got.Items[0].QtyApproved)
	}
	if stock := store.stock("SKU-001"); stock != 10 {
		t.Errorf("stock = %v, want untouched 10", stock)
	}
	if len(got.Approvals) != 1 || got.Approvals[0].Approved {
		t.Errorf("rejection must still append one approval record: %+v", got.Approvals)
	}
}

func TestProcess_StockClampsAtZero(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 4, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 10}})

	got, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{req.Items[0].LineID: 10}, true, "")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}

	if got.Status != models.StatusApproved {
		t.Errorf("status = %s, want approved (full grant, stock just clamps)", got.Status)
	}
	if stock := store.stock("SKU-001"); stock != 0 {
		t.Errorf("stock = %v, want clamped at 0", stock)
	}
}

func TestProcess_ReprocessingOverwrites(t *testing.T) {
	// Reprocesar una requisición terminal no está bloqueado: las cantidades
	// se sobreescriben y se acumula otro registro de aprobación. Cuidar el
	// doble proceso es del caller; este comportamiento es intencional.
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 20, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 5}})
	line := req.Items[0].LineID

	if _, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{line: 5}, true, "primera"); err != nil {
		t.Fatalf("first Process failed: %v", err)
	}

	got, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{line: 2}, true, "segunda")
	if err != nil {
		t.Fatalf("second Process failed: %v", err)
	}

	if *got.Items[0].QtyApproved != 2 {
		t.Errorf("qtyApproved = %v, want overwritten to 2", *got.Items[0].QtyApproved)
	}
	if got.Status != models.StatusPartiallyApproved {
		t.Errorf("status = %s, want partially_approved after second decision", got.Status)
	}
	if len(got.Approvals) != 2 {
		t.Errorf("approvals = %d, want one per process call", len(got.Approvals))
	}
	// El segundo proceso vuelve a descontar: 20 - 5 - 2.
	if stock := store.stock("SKU-001"); stock != 13 {
		t.Errorf("stock = %v, want 13", stock)
	}
}

func TestProcess_NegativeDecisionRejectedUpfront(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 10, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 3}})

	_, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{req.Items[0].LineID: -1}, true, "")
	if !errors.Is(err, ErrBadQuantity) {
		t.Fatalf("err = %v, want ErrBadQuantity", err)
	}

	stored, _ := store.GetRequisitionByCode(context.Background(), req.Code)
	if stored.Status != models.StatusPending || len(stored.Approvals) != 0 {
		t.Error("failed validation must leave the requisition untouched")
	}
	if stock := store.stock("SKU-001"); stock != 10 {
		t.Errorf("stock = %v, want untouched 10", stock)
	}
}

func TestProcess_UnknownCode(t *testing.T) {
	store := newMemoryStore()
	svc := newTestService(store)

	_, err := svc.Process(context.Background(), "REQ-20250901-9999", warehouseUser, nil, true, "")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestProcess_PersistenceFailureRollsBackEverything(t *testing.T) {
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 10, "un")
	svc := newTestService(store)

	req := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 3}})

	store.failSaveOutcome = true
	_, err := svc.Process(context.Background(), req.Code, warehouseUser,
		map[string]float64{req.Items[0].LineID: 3}, true, "")
	if !errors.Is(err, errTxBoom) {
		t.Fatalf("err = %v, want the storage failure surfaced", err)
	}

	// Ningún efecto parcial: ni el stock descontado ni el estado cambiado.
	if stock := store.stock("SKU-001"); stock != 10 {
		t.Errorf("stock = %v, want rolled back to 10", stock)
	}
	stored, _ := store.GetRequisitionByCode(context.Background(), req.Code)
	if stored.Status != models.StatusPending || len(stored.Approvals) != 0 {
		t.Errorf("requisition not rolled back: status=%s approvals=%d", stored.Status, len(stored.Approvals))
	}
}

func TestProcess_ConcurrentApprovalsNeverLoseUpdatesNorGoNegative(t *testing.T) {
	// Dos aprobaciones concurrentes sobre el mismo ítem cuya suma supera el
	// stock: el resultado final es max(0, inicial - suma) y ninguna de las
	// dos se pierde.
	store := newMemoryStore()
	store.seedItem("SKU-001", "Filtro", 10, "un")
	svc := newTestService(store)

	reqA := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 8}})
	reqB := mustCreate(t, svc, []ItemInput{{SKU: "SKU-001", Qty: 8}})

	var wg sync.WaitGroup
	process := func(req *models.Requisition) {
		defer wg.Done()
		_, err := svc.Process(context.Background(), req.Code, warehouseUser,
			map[string]float64{req.Items[0].LineID: 8}, true, "")
		if err != nil {
			t.Errorf("Process(%s) failed: %v", req.Code, err)
		}
	}

	wg.Add(2)
	go process(reqA)
	go process(reqB)
	wg.Wait()

	if stock := store.stock("SKU-001"); stock != 0 {
		t.Errorf("stock = %v, want max(0, 10-16) = 0", stock)
	}
	for _, code := range []string{reqA.Code, reqB.Code} {
		stored, err := store.GetRequisitionByCode(context.Background(), code)
		if err != nil {
			t.Fatalf("requisition %s lost: %v", code, err)
		}
		if stored.Status != models.StatusApproved {
			t.Errorf("requisition %s status = %s, want approved", code, stored.Status)
		}
		if len(stored.Approvals) != 1 {
			t.Errorf("requisition %s approvals = %d, want 1", code, len(stored.Approvals))
		}
	}
}
