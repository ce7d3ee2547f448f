// server/internal/database/seeder.go
package database

import (
	"context"
	"log"
	"time"

	"requisas-api-server/internal/auth"
	"requisas-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// SeedDemoData carga los datos de demostración (usuarios, áreas, máquinas e
// inventario inicial) si las colecciones están vacías. Pensado para
// desarrollo local; en producción se deshabilita por configuración.
func SeedDemoData(db *mongo.Database) error {
	ctx := context.Background()
	now := time.Now()

	userCollection := db.Collection("users")
	count, err := userCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count == 0 {
		log.Println("Seeding demo users...")
		hashed, err := auth.HashPassword("pass")
		if err != nil {
			return err
		}
		users := []interface{}{
			models.User{Username: "supervisor1", FullName: "Supervisor Uno", HashedPassword: hashed, Role: models.RoleSupervisor, Status: "active"},
			models.User{Username: "bodega1", FullName: "Bodega Uno", HashedPassword: hashed, Role: models.RoleWarehouse, Status: "active"},
			models.User{Username: "admin", FullName: "Admin", HashedPassword: hashed, Role: models.RoleAdmin, Status: "active"},
		}
		if _, err := userCollection.InsertMany(ctx, users); err != nil {
			return err
		}
	} else {
		log.Println("Users already exist. Seeding skipped.")
	}

	areaCollection := db.Collection("areas")
	count, err = areaCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count == 0 {
		areas := []interface{}{
			models.Area{Code: "A1", Name: "Area A", CreatedAt: now},
			models.Area{Code: "A2", Name: "Area B", CreatedAt: now},
		}
		if _, err := areaCollection.InsertMany(ctx, areas); err != nil {
			return err
		}
	}

	machineCollection := db.Collection("machines")
	count, err = machineCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count == 0 {
		machines := []interface{}{
			models.Machine{Code: "MACH-001", Name: "Corte 1", AreaCode: "A1", CreatedAt: now},
			models.Machine{Code: "MACH-002", Name: "Taladro 1", AreaCode: "A2", CreatedAt: now},
		}
		if _, err := machineCollection.InsertMany(ctx, machines); err != nil {
			return err
		}
	}

	itemCollection := db.Collection("inventory_items")
	count, err = itemCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return err
	}
	if count == 0 {
		items := []interface{}{
			models.InventoryItem{SKU: "SKU-001", Description: "Filtro", Stock: 50, Unit: "un", CreatedAt: now, UpdatedAt: now},
			models.InventoryItem{SKU: "SKU-002", Description: "Tornillo M8", Stock: 1000, Unit: "pcs", CreatedAt: now, UpdatedAt: now},
		}
		if _, err := itemCollection.InsertMany(ctx, items); err != nil {
			return err
		}
	}

	log.Println("Demo data seeded successfully.")
	return nil
}
