// server/internal/api/handlers/export_handler.go
package handlers

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"requisas-api-server/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ExportHandler struct {
	DB *mongo.Database
}

var exportHeader = []string{
	"code", "requester", "area", "machine", "sku", "description",
	"qty_requested", "qty_approved", "status", "created_at",
}

// ExportHistory exporta el historial de requisiciones aplanado (una fila por
// línea de requisición), como planilla xlsx o como csv según ?format=.
func (h *ExportHandler) ExportHistory(c *gin.Context) {
	filter := bson.M{}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	collection := h.DB.Collection("requisitions")
	findOpts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(500)
	cursor, err := collection.Find(context.Background(), filter, findOpts)
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

	rows := flattenHistory(requisitions)

	switch c.DefaultQuery("format", "xlsx") {
	case "csv":
		h.writeCSV(c, rows)
	case "xlsx":
		h.writeXLSX(c, rows)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported format, use xlsx or csv"})
	}
}

// flattenHistory convierte las requisiciones en filas planas para exportar.
func flattenHistory(requisitions []models.Requisition) [][]string {
	rows := [][]string{exportHeader}
	for _, r := range requisitions {
		for _, it := range r.Items {
			approved := ""
			if it.QtyApproved != nil {
				approved = fmt.Sprintf("%g", *it.QtyApproved)
			}
			rows = append(rows, []string{
				r.Code,
				r.RequesterID,
				r.AreaCode,
				r.MachineCode,
				it.SKU,
				it.Description,
				fmt.Sprintf("%g", it.QtyRequested),
				approved,
				r.Status,
				r.CreatedAt.Format(time.RFC3339),
			})
		}
	}
	return rows
}

func (h *ExportHandler) writeCSV(c *gin.Context, rows [][]string) {
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="requisas_hist.csv"`)

	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(rows); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write CSV"})
		return
	}
}

func (h *ExportHandler) writeXLSX(c *gin.Context, rows [][]string) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build spreadsheet"})
			return
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build spreadsheet"})
			return
		}
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", `attachment; filename="requisas_hist.xlsx"`)

	if err := f.Write(c.Writer); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to write spreadsheet"})
		return
	}
}
