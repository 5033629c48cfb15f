package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/mamadbah2/cropledger/internal/domain/models"
)

// ErrNotFound is returned when a requested document does not exist.
var ErrNotFound = errors.New("document not found")

const (
	productionCollection = "production_records"
	costsCollection      = "input_costs"
	pricesCollection     = "price_config"
	reportsCollection    = "analytics_reports"

	priceConfigID = "default"
)

// RecordStore persists production and input-cost records.
type RecordStore interface {
	SaveProduction(ctx context.Context, record models.ProductionRecord) error
	SaveCost(ctx context.Context, record models.InputCostRecord) error
	ListProduction(ctx context.Context, scope models.Scope) ([]models.ProductionRecord, error)
	ListCosts(ctx context.Context, scope models.Scope) ([]models.InputCostRecord, error)
}

// PriceStore persists the pricing configuration.
type PriceStore interface {
	GetPriceConfig(ctx context.Context) (models.PriceConfig, error)
	SavePriceConfig(ctx context.Context, cfg models.PriceConfig) error
}

// ReportStore persists analytics snapshots.
type ReportStore interface {
	SaveReport(ctx context.Context, report models.AnalyticsReport) error
	ListReports(ctx context.Context, limit int64) ([]models.AnalyticsReport, error)
}

// MongoDBRepository implements the store interfaces for MongoDB.
type MongoDBRepository struct {
	client *mongo.Client
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoDBRepository creates a new MongoDB repository.
func NewMongoDBRepository(ctx context.Context, uri string, dbName string, logger *zap.Logger) (*MongoDBRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	// Ping the database to verify connection
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &MongoDBRepository{
		client: client,
		db:     client.Database(dbName),
		logger: logger,
	}, nil
}

// SaveProduction inserts a production record.
func (r *MongoDBRepository) SaveProduction(ctx context.Context, record models.ProductionRecord) error {
	if _, err := r.db.Collection(productionCollection).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert production record: %w", err)
	}
	r.logger.Debug("production record stored", zap.String("id", record.ID))
	return nil
}

// SaveCost inserts an input-cost record.
func (r *MongoDBRepository) SaveCost(ctx context.Context, record models.InputCostRecord) error {
	if _, err := r.db.Collection(costsCollection).InsertOne(ctx, record); err != nil {
		return fmt.Errorf("failed to insert input cost record: %w", err)
	}
	r.logger.Debug("input cost record stored", zap.String("id", record.ID))
	return nil
}

// ListProduction returns production records inside the date range of
// scope, oldest first.
func (r *MongoDBRepository) ListProduction(ctx context.Context, scope models.Scope) ([]models.ProductionRecord, error) {
	var out []models.ProductionRecord
	if err := r.find(ctx, productionCollection, ScopeFilter(scope), &out); err != nil {
		return nil, fmt.Errorf("failed to list production records: %w", err)
	}
	return out, nil
}

// ListCosts returns input-cost records inside the date range of scope,
// oldest first.
func (r *MongoDBRepository) ListCosts(ctx context.Context, scope models.Scope) ([]models.InputCostRecord, error) {
	var out []models.InputCostRecord
	if err := r.find(ctx, costsCollection, ScopeFilter(scope), &out); err != nil {
		return nil, fmt.Errorf("failed to list input cost records: %w", err)
	}
	return out, nil
}

func (r *MongoDBRepository) find(ctx context.Context, collection string, filter bson.M, out any) error {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}})
	cursor, err := r.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return err
	}
	return cursor.All(ctx, out)
}

// GetPriceConfig loads the stored pricing configuration.
func (r *MongoDBRepository) GetPriceConfig(ctx context.Context) (models.PriceConfig, error) {
	var doc struct {
		models.PriceConfig `bson:",inline"`
	}
	err := r.db.Collection(pricesCollection).FindOne(ctx, bson.M{"_id": priceConfigID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.PriceConfig{}, ErrNotFound
	}
	if err != nil {
		return models.PriceConfig{}, fmt.Errorf("failed to load price config: %w", err)
	}
	return doc.PriceConfig, nil
}

// SavePriceConfig replaces the stored pricing configuration.
func (r *MongoDBRepository) SavePriceConfig(ctx context.Context, cfg models.PriceConfig) error {
	doc := struct {
		ID                 string `bson:"_id"`
		models.PriceConfig `bson:",inline"`
	}{ID: priceConfigID, PriceConfig: cfg}

	opts := options.Replace().SetUpsert(true)
	if _, err := r.db.Collection(pricesCollection).ReplaceOne(ctx, bson.M{"_id": priceConfigID}, doc, opts); err != nil {
		return fmt.Errorf("failed to save price config: %w", err)
	}
	return nil
}

// SaveReport stores an analytics snapshot.
func (r *MongoDBRepository) SaveReport(ctx context.Context, report models.AnalyticsReport) error {
	if _, err := r.db.Collection(reportsCollection).InsertOne(ctx, report); err != nil {
		return fmt.Errorf("failed to insert analytics report: %w", err)
	}
	return nil
}

// ListReports returns the newest snapshots first.
func (r *MongoDBRepository) ListReports(ctx context.Context, limit int64) ([]models.AnalyticsReport, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}
	cursor, err := r.db.Collection(reportsCollection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list analytics reports: %w", err)
	}
	var out []models.AnalyticsReport
	if err := cursor.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode analytics reports: %w", err)
	}
	return out, nil
}

// Close closes the MongoDB connection.
func (r *MongoDBRepository) Close(ctx context.Context) error {
	return r.client.Disconnect(ctx)
}

// ScopeFilter translates the date range of a scope into a query document.
// Bounds are inclusive calendar days, so the upper bound is the start of the
// next day. Location and crop selection ignores case and is left to
// analytics.Filter.
func ScopeFilter(scope models.Scope) bson.M {
	filter := bson.M{}

	date := bson.M{}
	if !scope.From.IsZero() {
		date["$gte"] = startOfDay(scope.From)
	}
	if !scope.To.IsZero() {
		date["$lt"] = startOfDay(scope.To).AddDate(0, 0, 1)
	}
	if len(date) > 0 {
		filter["date"] = date
	}
	return filter
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
