// server/internal/api/handlers/inventory_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"requisas-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type InventoryHandler struct {
	DB *mongo.Database
}

type CreateInventoryItemRequest struct {
	SKU         string  `json:"sku" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Stock       float64 `json:"stock" binding:"min=0"`
	Unit        string  `json:"unit" binding:"required"`
}

// CreateInventoryItem da de alta un ítem de inventario (solo admin).
func (h *InventoryHandler) CreateInventoryItem(c *gin.Context) {
	var req CreateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("inventory_items")

	// Chequear que el SKU no exista todavía
	count, err := collection.CountDocuments(context.Background(), bson.M{"sku": req.SKU})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for item"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Item with this SKU already exists"})
		return
	}

	newItem := models.InventoryItem{
		SKU:         req.SKU,
		Description: req.Description,
		Stock:       req.Stock,
		Unit:        req.Unit,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newItem)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create inventory item"})
		return
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newItem.ID = oid
	}

	c.JSON(http.StatusCreated, newItem)
}

type UpdateInventoryItemRequest struct {
	Description *string  `json:"description"`
	Stock       *float64 `json:"stock"`
	Unit        *string  `json:"unit"`
}

// UpdateInventoryItem actualiza descripción, unidad o stock de un ítem
// (solo admin; los ajustes manuales de stock son correcciones de bodega, el
// descuento normal lo hace el procesador de aprobaciones).
func (h *InventoryHandler) UpdateInventoryItem(c *gin.Context) {
	sku := c.Param("sku")

	var req UpdateInventoryItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	set := bson.M{"updatedAt": time.Now()}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Unit != nil {
		set["unit"] = *req.Unit
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Stock cannot be negative"})
			return
		}
		set["stock"] = *req.Stock
	}

	collection := h.DB.Collection("inventory_items")
	result, err := collection.UpdateOne(context.Background(), bson.M{"sku": sku}, bson.M{"$set": set})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}
	if result.MatchedCount == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	var item models.InventoryItem
	if err := collection.FindOne(context.Background(), bson.M{"sku": sku}).Decode(&item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve updated item"})
		return
	}

	c.JSON(http.StatusOK, item)
}

// GetAllInventoryItems lista el inventario. El stock que se muestra acá es
// solo informativo para armar requisiciones; no reserva nada.
func (h *InventoryHandler) GetAllInventoryItems(c *gin.Context) {
	collection := h.DB.Collection("inventory_items")
	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query inventory"})
		return
	}
	defer cursor.Close(context.Background())

	var items []models.InventoryItem
	if err = cursor.All(context.Background(), &items); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode inventory"})
		return
	}

	if items == nil {
		items = []models.InventoryItem{}
	}

	c.JSON(http.StatusOK, items)
}

// GetInventoryItemBySKU devuelve un ítem puntual.
func (h *InventoryHandler) GetInventoryItemBySKU(c *gin.Context) {
	sku := c.Param("sku")
	collection := h.DB.Collection("inventory_items")

	var item models.InventoryItem
	if err := collection.FindOne(context.Background(), bson.M{"sku": sku}).Decode(&item); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve inventory item"})
		}
		return
	}

	c.JSON(http.StatusOK, item)
}
