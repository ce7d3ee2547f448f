// server/internal/api/handlers/catalog_handler.go
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

// CatalogHandler maneja las áreas y máquinas de planta que una requisición
// puede referenciar.
type CatalogHandler struct {
	DB *mongo.Database
}

type CreateAreaRequest struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

func (h *CatalogHandler) CreateArea(c *gin.Context) {
	var req CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("areas")

	count, err := collection.CountDocuments(context.Background(), bson.M{"code": req.Code})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for area"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Area with this code already exists"})
		return
	}

	newArea := models.Area{
		Code:      req.Code,
		Name:      req.Name,
		CreatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newArea)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create area"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newArea.ID = oid
	}

	c.JSON(http.StatusCreated, newArea)
}

func (h *CatalogHandler) GetAllAreas(c *gin.Context) {
	collection := h.DB.Collection("areas")
	cursor, err := collection.Find(context.Background(), bson.M{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query areas"})
		return
	}
	defer cursor.Close(context.Background())

	var areas []models.Area
	if err = cursor.All(context.Background(), &areas); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode areas"})
		return
	}

	if areas == nil {
		areas = []models.Area{}
	}

	c.JSON(http.StatusOK, areas)
}

type CreateMachineRequest struct {
	Code     string `json:"code" binding:"required"`
	Name     string `json:"name" binding:"required"`
	AreaCode string `json:"areaCode"`
}

func (h *CatalogHandler) CreateMachine(c *gin.Context) {
	var req CreateMachineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	collection := h.DB.Collection("machines")

	count, err := collection.CountDocuments(context.Background(), bson.M{"code": req.Code})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for machine"})
		return
	}
	if count > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Machine with this code already exists"})
		return
	}

	// Si viene areaCode, validar que el área exista
	if req.AreaCode != "" {
		count, err := h.DB.Collection("areas").CountDocuments(context.Background(), bson.M{"code": req.AreaCode})
		if err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced area does not exist"})
			return
		}
	}

	newMachine := models.Machine{
		Code:      req.Code,
		Name:      req.Name,
		AreaCode:  req.AreaCode,
		CreatedAt: time.Now(),
	}

	result, err := collection.InsertOne(context.Background(), newMachine)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create machine"})
		return
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		newMachine.ID = oid
	}

	c.JSON(http.StatusCreated, newMachine)
}

func (h *CatalogHandler) GetAllMachines(c *gin.Context) {
	filter := bson.M{}
	if areaCode := c.Query("areaCode"); areaCode != "" {
		filter["areaCode"] = areaCode
	}

	collection := h.DB.Collection("machines")
	cursor, err := collection.Find(context.Background(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query machines"})
		return
	}
	defer cursor.Close(context.Background())

	var machines []models.Machine
	if err = cursor.All(context.Background(), &machines); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode machines"})
		return
	}

	if machines == nil {
		machines = []models.Machine{}
	}

	c.JSON(http.StatusOK, machines)
}
