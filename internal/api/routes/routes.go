// server/internal/api/routes/routes.go
package routes

import (
	"requisas-api-server/config"
	"requisas-api-server/internal/api/handlers"
	"requisas-api-server/internal/api/middleware"
	"requisas-api-server/internal/models"
	"requisas-api-server/internal/requisition"
	"requisas-api-server/internal/s3"
	"requisas-api-server/internal/socket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// SetupRouter recibe las dependencias ya armadas y configura las rutas.
func SetupRouter(
	cfg config.Config,
	db *mongo.Database,
	reqService *requisition.Service,
	s3Uploader *s3.Uploader,
	wsHub *socket.Hub,
) *gin.Engine {
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	// Inicializar los handlers
	userHandler := &handlers.UserHandler{DB: db, Cfg: cfg}
	inventoryHandler := &handlers.InventoryHandler{DB: db}
	catalogHandler := &handlers.CatalogHandler{DB: db}
	requisitionHandler := &handlers.RequisitionHandler{DB: db, Service: reqService, Hub: wsHub, S3Uploader: s3Uploader}
	exportHandler := &handlers.ExportHandler{DB: db}
	webSocketHandler := &handlers.WebSocketHandler{Hub: wsHub}

	apiV1 := router.Group("/api/v1")
	{
		// WebSocket (autentica por token en query)
		apiV1.GET("/ws", webSocketHandler.ServeWs)

		// === RUTAS SIN AUTENTICACIÓN ===
		auth := apiV1.Group("/auth")
		{
			auth.POST("/login", userHandler.Login)
		}

		// === RUTAS DE ADMINISTRACIÓN (solo admin) ===
		admin := apiV1.Group("/admin")
		admin.Use(middleware.Authenticate())
		admin.Use(middleware.Authorize(models.RoleAdmin))
		{
			admin.POST("/users", userHandler.CreateUser)
			admin.GET("/users", userHandler.GetAllUsers)

			admin.POST("/inventory", inventoryHandler.CreateInventoryItem)
			admin.PUT("/inventory/:sku", inventoryHandler.UpdateInventoryItem)

			admin.POST("/areas", catalogHandler.CreateArea)
			admin.POST("/machines", catalogHandler.CreateMachine)
		}

		// === RUTAS DE NEGOCIO (autenticadas) ===
		business := apiV1.Group("/")
		business.Use(middleware.Authenticate())
		{
			// Catálogo e inventario de solo lectura para armar requisiciones
			business.GET("/inventory", inventoryHandler.GetAllInventoryItems)
			business.GET("/inventory/:sku", inventoryHandler.GetInventoryItemBySKU)
			business.GET("/areas", catalogHandler.GetAllAreas)
			business.GET("/machines", catalogHandler.GetAllMachines)

			requisitions := business.Group("/requisitions")
			{
				// Crear: supervisores (y admin)
				createRoutes := requisitions.Group("/")
				createRoutes.Use(middleware.Authorize(models.RoleSupervisor, models.RoleAdmin))
				{
					createRoutes.POST("/", requisitionHandler.CreateRequisition)
					createRoutes.POST("/:code/attachments", requisitionHandler.UploadAttachment)
				}

				// Procesar y listar todo: bodega (y admin)
				warehouseRoutes := requisitions.Group("/")
				warehouseRoutes.Use(middleware.Authorize(models.RoleWarehouse, models.RoleAdmin))
				{
					warehouseRoutes.GET("/", requisitionHandler.GetAllRequisitions)
					warehouseRoutes.GET("/pending", requisitionHandler.GetPendingRequisitions)
					warehouseRoutes.GET("/export", exportHandler.ExportHistory)
					warehouseRoutes.POST("/:code/process", requisitionHandler.ProcessRequisition)
				}

				// Lecturas individuales: cualquier usuario autenticado
				requisitions.GET("/my", requisitionHandler.GetMyRequisitions)
				requisitions.GET("/:code", requisitionHandler.GetRequisitionByCode)
			}
		}
	}

	return router
}
