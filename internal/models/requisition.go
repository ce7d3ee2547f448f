// server/internal/models/requisition.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Estados del ciclo de vida de una requisición. "cancelled" existe en el
// vocabulario pero ninguna operación del núcleo lo alcanza todavía; queda
// reservado para una acción administrativa futura.
const (
	StatusPending           = "pending"
	StatusApproved          = "approved"
	StatusPartiallyApproved = "partially_approved"
	StatusRejected          = "rejected"
	StatusCancelled         = "cancelled"
)

// RequisitionItem es una línea de la requisición: un ítem de inventario y la
// cantidad solicitada. QtyApproved queda en nil hasta la primera decisión.
// Description y Unit se copian del inventario al crear, para que el documento
// sea legible sin joins.
type RequisitionItem struct {
	LineID       string   `bson:"lineID" json:"lineID"`
	SKU          string   `bson:"sku" json:"sku"`
	Description  string   `bson:"description" json:"description"`
	Unit         string   `bson:"unit" json:"unit"`
	QtyRequested float64  `bson:"qtyRequested" json:"qtyRequested"`
	QtyApproved  *float64 `bson:"qtyApproved,omitempty" json:"qtyApproved"`
}

// Approval es un registro de auditoría append-only de una decisión sobre la
// requisición. Se agrega uno por cada llamada a process, incluso en rechazos.
type Approval struct {
	ApproverID   string    `bson:"approverID" json:"approverID"`
	ApproverName string    `bson:"approverName" json:"approverName"`
	Approved     bool      `bson:"approved" json:"approved"`
	Comment      string    `bson:"comment" json:"comment"`
	Timestamp    time.Time `bson:"timestamp" json:"timestamp"`
}

// Requisition es una solicitud de consumibles/repuestos con sus líneas y su
// historial de aprobaciones embebidos. El documento es dueño exclusivo de
// Items y Approvals; InventoryItem es compartido y solo se referencia por SKU.
type Requisition struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code          string             `bson:"code" json:"code"` // único, ej: "REQ-20250901-0001"
	RequesterID   string             `bson:"requesterID" json:"requesterID"`
	RequesterName string             `bson:"requesterName" json:"requesterName"`
	AreaCode      string             `bson:"areaCode,omitempty" json:"areaCode"`
	MachineCode   string             `bson:"machineCode,omitempty" json:"machineCode"`
	Status        string             `bson:"status" json:"status"`
	Note          string             `bson:"note" json:"note"`
	Items         []RequisitionItem  `bson:"items" json:"items"`
	Approvals     []Approval         `bson:"approvals" json:"approvals"`
	Attachments   []MediaPointer     `bson:"attachments,omitempty" json:"attachments"`
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}
