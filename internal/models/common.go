// server/internal/models/common.go
package models

// MediaPointer representa un documento o foto almacenado en S3 (o similar).
type MediaPointer struct {
	ID       string `bson:"id" json:"id"`
	URL      string `bson:"url" json:"url"`
	FileName string `bson:"fileName" json:"fileName"`
	FileType string `bson:"fileType" json:"fileType"` // ej: "image/jpeg", "application/pdf"
}
