// server/internal/api/handlers/requisition_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"requisas-api-server/internal/models"
	"requisas-api-server/internal/requisition"
	"requisas-api-server/internal/s3"
	"requisas-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RequisitionHandler struct {
	DB         *mongo.Database
	Service    *requisition.Service
	Hub        *socket.Hub
	S3Uploader *s3.Uploader
}

type RequisitionItemPayload struct {
	SKU string  `json:"sku" binding:"required"`
	Qty float64 `json:"qty" binding:"required,gt=0"`
}

type CreateRequisitionPayload struct {
	AreaCode    string                   `json:"areaCode"`
	MachineCode string                   `json:"machineCode"`
	Note        string                   `json:"note"`
	Items       []RequisitionItemPayload `json:"items" binding:"required,dive"`
}

// CreateRequisition crea una requisición nueva en estado pending.
// Los SKU que no resuelven se omiten y se devuelven en skippedItems.
func (h *RequisitionHandler) CreateRequisition(c *gin.Context) {
	actor := actorFromContext(c)

	var payload CreateRequisitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// area y máquina son opcionales, pero si vienen tienen que existir
	if payload.AreaCode != "" {
		count, err := h.DB.Collection("areas").CountDocuments(context.Background(), bson.M{"code": payload.AreaCode})
		if err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced area does not exist"})
			return
		}
	}
	if payload.MachineCode != "" {
		count, err := h.DB.Collection("machines").CountDocuments(context.Background(), bson.M{"code": payload.MachineCode})
		if err != nil || count == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Referenced machine does not exist"})
			return
		}
	}

	in := requisition.CreateInput{
		AreaCode:    payload.AreaCode,
		MachineCode: payload.MachineCode,
		Note:        payload.Note,
	}
	for _, it := range payload.Items {
		in.Items = append(in.Items, requisition.ItemInput{SKU: it.SKU, Qty: it.Qty})
	}

	req, skipped, err := h.Service.Create(context.Background(), actor, in)
	if err != nil {
		switch {
		case errors.Is(err, requisition.ErrNoItems), errors.Is(err, requisition.ErrBadQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, requisition.ErrCodeConflict):
			// Carrera perdida contra el índice único; el cliente reintenta.
			c.JSON(http.StatusConflict, gin.H{"error": "Requisition code collision, please retry"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create requisition"})
		}
		return
	}

	// Avisar a bodega que hay una requisición nueva por aprobar
	notification := map[string]interface{}{
		"event":       "new_requisition",
		"requisition": req,
	}
	notificationJSON, _ := json.Marshal(notification)
	h.Hub.SendToRole(notificationJSON, models.RoleWarehouse, models.RoleAdmin)

	skippedItems := []gin.H{}
	for _, it := range skipped {
		skippedItems = append(skippedItems, gin.H{"sku": it.SKU, "qty": it.Qty})
	}

	c.JSON(http.StatusCreated, gin.H{
		"requisition":  req,
		"skippedItems": skippedItems,
	})
}

type ProcessRequisitionPayload struct {
	Approved  *bool              `json:"approved" binding:"required"`
	Comment   string             `json:"comment"`
	Decisions map[string]float64 `json:"decisions"`
}

// ProcessRequisition aplica la decisión de bodega sobre una requisición
// pendiente: aprobar, aprobar parcial o rechazar. Las líneas que no vengan en
// decisions quedan aprobadas en cero.
func (h *RequisitionHandler) ProcessRequisition(c *gin.Context) {
	code := c.Param("code")
	actor := actorFromContext(c)

	var payload ProcessRequisitionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req, err := h.Service.Process(context.Background(), code, actor, payload.Decisions, *payload.Approved, payload.Comment)
	if err != nil {
		switch {
		case errors.Is(err, requisition.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		case errors.Is(err, requisition.ErrBadQuantity):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Transaction failed", "details": err.Error()})
		}
		return
	}

	// Avisar al solicitante el resultado
	notification := map[string]interface{}{
		"event":       "requisition_processed",
		"code":        req.Code,
		"status":      req.Status,
		"requisition": req,
	}
	notificationJSON, _ := json.Marshal(notification)
	h.Hub.Send(req.RequesterID, notificationJSON)

	c.JSON(http.StatusOK, req)
}

// GetMyRequisitions lista las requisiciones del usuario conectado.
func (h *RequisitionHandler) GetMyRequisitions(c *gin.Context) {
	requesterID := c.GetString("user_id")

	filter := bson.M{"requesterID": requesterID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	h.listRequisitions(c, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// GetAllRequisitions lista el historial completo, con filtro opcional por
// estado. Ejemplo: /requisitions?status=pending
func (h *RequisitionHandler) GetAllRequisitions(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	h.listRequisitions(c, filter, bson.D{{Key: "createdAt", Value: -1}})
}

// GetPendingRequisitions lista lo pendiente por aprobar, de más viejo a más
// nuevo (orden de llegada para bodega).
func (h *RequisitionHandler) GetPendingRequisitions(c *gin.Context) {
	filter := bson.M{"status": models.StatusPending}
	h.listRequisitions(c, filter, bson.D{{Key: "createdAt", Value: 1}})
}

func (h *RequisitionHandler) listRequisitions(c *gin.Context, filter bson.M, sort bson.D) {
	collection := h.DB.Collection("requisitions")
	cursor, err := collection.Find(context.Background(), filter, options.Find().SetSort(sort))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to query requisitions"})
		return
	}
	defer cursor.Close(context.Background())

	var requisitions []models.Requisition
	if err = cursor.All(context.Background(), &requisitions); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decode requisitions"})
		return
	}

	if requisitions == nil {
		requisitions = []models.Requisition{}
	}

	c.JSON(http.StatusOK, requisitions)
}

// GetRequisitionByCode devuelve el detalle de una requisición.
func (h *RequisitionHandler) GetRequisitionByCode(c *gin.Context) {
	code := c.Param("code")
	collection := h.DB.Collection("requisitions")

	var req models.Requisition
	if err := collection.FindOne(context.Background(), bson.M{"code": code}).Decode(&req); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve requisition"})
		}
		return
	}

	c.JSON(http.StatusOK, req)
}

// UploadAttachment sube una foto o documento adjunto a la requisición (ej:
// la pieza desgastada que motiva el pedido) y lo referencia en el documento.
func (h *RequisitionHandler) UploadAttachment(c *gin.Context) {
	code := c.Param("code")

	if h.S3Uploader == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Attachment storage is not configured"})
		return
	}

	collection := h.DB.Collection("requisitions")
	count, err := collection.CountDocuments(context.Background(), bson.M{"code": code})
	if err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Requisition not found"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open uploaded file"})
		return
	}
	defer file.Close()

	attachmentID := uuid.New().String()[:8]
	objectKey := fmt.Sprintf("requisitions/%s/%s-%s", code, attachmentID, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")

	url, err := h.S3Uploader.UploadFile(context.Background(), file, objectKey, contentType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload attachment", "details": err.Error()})
		return
	}

	pointer := models.MediaPointer{
		ID:       attachmentID,
		URL:      url,
		FileName: fileHeader.Filename,
		FileType: contentType,
	}

	update := bson.M{
		"$push": bson.M{"attachments": pointer},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	if _, err := collection.UpdateOne(context.Background(), bson.M{"code": code}, update); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach file to requisition"})
		return
	}

	c.JSON(http.StatusCreated, pointer)
}

// actorFromContext arma el Actor con lo que dejó el middleware Authenticate.
func actorFromContext(c *gin.Context) requisition.Actor {
	return requisition.Actor{
		ID:   c.GetString("user_id"),
		Name: c.GetString("user_name"),
		Role: c.GetString("user_role"),
	}
}
