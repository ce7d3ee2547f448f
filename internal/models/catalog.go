// server/internal/models/catalog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Area es una zona de planta (ej: "A1 - Corte").
type Area struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"` // único, ej: "A1"
	Name      string             `bson:"name" json:"name"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// Machine es una máquina de planta, opcionalmente asociada a un área.
type Machine struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code      string             `bson:"code" json:"code"` // único, ej: "MACH-001"
	Name      string             `bson:"name" json:"name"`
	AreaCode  string             `bson:"areaCode,omitempty" json:"areaCode"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
