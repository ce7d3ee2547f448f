package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles reconocidos por el sistema. El rol "warehouse" corresponde al
// personal de bodega.
const (
	RoleSupervisor = "supervisor"
	RoleWarehouse  = "warehouse"
	RoleAdmin      = "admin"
)

// User struct matches the document in MongoDB
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username       string             `bson:"username" json:"username"`
	FullName       string             `bson:"fullName" json:"fullName"`
	HashedPassword string             `bson:"hashedPassword" json:"-"`
	Role           string             `bson:"role" json:"role"`
	Status         string             `bson:"status" json:"status"` // "active", "disabled"
}
