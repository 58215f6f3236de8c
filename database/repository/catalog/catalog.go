// File: database/repository/catalog/catalog.go
package catalogRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotbook/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrServiceNotFound = errors.New("service not found")

// CatalogRepository reads the services that providers offer.
type CatalogRepository interface {
	GetByID(ctx context.Context, id string) (*models.Service, error)
	Create(ctx context.Context, svc *models.Service) error
}

type MongoCatalogRepo struct {
	coll *mongo.Collection
}

func NewMongoCatalogRepo(db *mongo.Database) *MongoCatalogRepo {
	return &MongoCatalogRepo{coll: db.Collection("services")}
}

func (r *MongoCatalogRepo) GetByID(ctx context.Context, id string) (*models.Service, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var svc models.Service
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&svc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrServiceNotFound
		}
		return nil, fmt.Errorf("failed to fetch service: %w", err)
	}
	return &svc, nil
}

func (r *MongoCatalogRepo) Create(ctx context.Context, svc *models.Service) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = time.Now().UTC()
	}
	if _, err := r.coll.InsertOne(ctx, svc); err != nil {
		return fmt.Errorf("failed to insert service: %w", err)
	}
	return nil
}

func (r *MongoCatalogRepo) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "providerId", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create service indexes: %w", err)
	}
	return nil
}
