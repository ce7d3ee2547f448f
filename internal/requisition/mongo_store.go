// server/internal/requisition/mongo_store.go
package requisition

import (
	"context"
	"time"

	"requisas-api-server/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore implementa Store sobre las colecciones del servidor:
// requisitions, inventory_items y counters.
type MongoStore struct {
	DB *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{DB: db}
}

// WithinTx corre fn dentro de una transacción de MongoDB. El SessionContext
// se pasa como context normal: toda operación de colección que lo use queda
// ligada a la transacción, y un error en fn la aborta completa.
func (s *MongoStore) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.DB.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

// NextDailySequence incrementa y devuelve el contador del día con un solo
// FindOneAndUpdate (upsert). Esto cierra la carrera del esquema
// contar-y-formatear: dos creaciones concurrentes del mismo día nunca ven la
// misma secuencia.
func (s *MongoStore) NextDailySequence(ctx context.Context, day string) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := s.DB.Collection("counters").FindOneAndUpdate(ctx,
		bson.M{"_id": "requisitions-" + day},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}

func (s *MongoStore) GetInventoryItemBySKU(ctx context.Context, sku string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	err := s.DB.Collection("inventory_items").FindOne(ctx, bson.M{"sku": sku}).Decode(&item)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// DecrementStock descuenta qty del stock del ítem con piso en cero, usando un
// update con pipeline de agregación: el max(0, stock - qty) se evalúa de
// forma atómica en el documento, así dos aprobaciones concurrentes sobre el
// mismo ítem no pueden leerse un stock viejo ni dejarlo negativo.
func (s *MongoStore) DecrementStock(ctx context.Context, sku string, qty float64, now time.Time) error {
	update := mongo.Pipeline{
		bson.D{{Key: "$set", Value: bson.M{
			"stock": bson.M{"$max": bson.A{
				0,
				bson.M{"$subtract": bson.A{"$stock", qty}},
			}},
			"updatedAt": now,
		}}},
	}
	// MatchedCount == 0 significa que el ítem ya no existe: se tolera como
	// no-op, igual que la política de omisión en la creación.
	_, err := s.DB.Collection("inventory_items").UpdateOne(ctx, bson.M{"sku": sku}, update)
	return err
}

func (s *MongoStore) InsertRequisition(ctx context.Context, req *models.Requisition) error {
	result, err := s.DB.Collection("requisitions").InsertOne(ctx, req)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			// Respaldo del índice único sobre "code"; el caller reintenta.
			return ErrCodeConflict
		}
		return err
	}
	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		req.ID = oid
	}
	return nil
}

func (s *MongoStore) GetRequisitionByCode(ctx context.Context, code string) (*models.Requisition, error) {
	var req models.Requisition
	err := s.DB.Collection("requisitions").FindOne(ctx, bson.M{"code": code}).Decode(&req)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (s *MongoStore) SaveApprovalOutcome(ctx context.Context, req *models.Requisition) error {
	update := bson.M{"$set": bson.M{
		"status":    req.Status,
		"items":     req.Items,
		"approvals": req.Approvals,
		"updatedAt": req.UpdatedAt,
	}}
	result, err := s.DB.Collection("requisitions").UpdateOne(ctx, bson.M{"code": req.Code}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
