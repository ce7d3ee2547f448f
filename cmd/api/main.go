// server/cmd/api/main.go
package main

import (
	"context"
	"log"

	"requisas-api-server/config"
	"requisas-api-server/internal/api/routes"
	"requisas-api-server/internal/auth"
	"requisas-api-server/internal/database"
	"requisas-api-server/internal/requisition"
	"requisas-api-server/internal/s3"
	"requisas-api-server/internal/socket"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Cargar .env si existe (desarrollo local) y la configuración
	_ = godotenv.Load()

	cfg, err := config.LoadConfig("./config")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 2. Logger estructurado
	logger, err := zap.NewProduction()
	if cfg.Server.Mode != "release" {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	// 3. Secreto JWT desde configuración
	auth.SetSecret(cfg.JWT.Secret)

	// 4. Conexión a MongoDB e índices
	db, err := database.Connect(cfg.Mongo)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	if err := database.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal("Failed to ensure indexes", zap.Error(err))
	}

	// 5. Datos de demo (deshabilitado en producción por config)
	if cfg.Seed.DemoData {
		if err := database.SeedDemoData(db); err != nil {
			logger.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	// 6. Hub de WebSocket para notificaciones en la app
	wsHub := socket.NewHub()

	// 7. Uploader S3 para adjuntos (opcional: sin bucket el endpoint falla
	// pero el resto del servidor funciona)
	var s3Uploader *s3.Uploader
	if cfg.S3.Bucket != "" {
		s3Uploader, err = s3.NewUploader(cfg.S3)
		if err != nil {
			logger.Fatal("Failed to create S3 uploader", zap.Error(err))
		}
	}

	// 8. Motor de requisiciones sobre el store de Mongo
	reqStore := requisition.NewMongoStore(db)
	reqService := requisition.NewService(reqStore, logger, nil)

	// 9. Router con todas las dependencias
	router := routes.SetupRouter(cfg, db, reqService, s3Uploader, wsHub)

	// 10. Levantar el servidor
	logger.Info("Starting API server", zap.String("port", cfg.Server.Port))
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to run server", zap.Error(err))
	}
}
