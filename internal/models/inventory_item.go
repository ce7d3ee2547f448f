// server/internal/models/inventory_item.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// InventoryItem es el registro de existencias de un ítem de bodega.
// El campo Stock solo lo muta el procesador de aprobaciones; nunca baja de cero.
type InventoryItem struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SKU         string             `bson:"sku" json:"sku"` // único, ej: "SKU-001"
	Description string             `bson:"description" json:"description"`
	Stock       float64            `bson:"stock" json:"stock"`
	Unit        string             `bson:"unit" json:"unit"` // ej: "un", "pcs", "kg"
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
