package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mx-space/content-migrate/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoStore persists documents and asset records in MongoDB.
type MongoStore struct {
	docs   *mongo.Collection
	assets *mongo.Collection
}

func NewMongoStore(db *mongo.Database, collection string) *MongoStore {
	if collection == "" {
		collection = models.DocumentModel{}.TableName()
	}
	return &MongoStore{
		docs:   db.Collection(collection),
		assets: db.Collection(models.AssetModel{}.TableName()),
	}
}

func (s *MongoStore) FindByID(ctx context.Context, id string) (*models.DocumentModel, error) {
	var doc models.DocumentModel
	err := s.docs.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (s *MongoStore) CreateOrReplace(ctx context.Context, doc *models.DocumentModel) error {
	if doc.ID == "" {
		return errors.New("document id is required")
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	_, err := s.docs.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

func (s *MongoStore) SaveAsset(ctx context.Context, asset *models.AssetModel) error {
	now := time.Now()
	asset.CreatedAt, asset.UpdatedAt = now, now
	if _, err := s.assets.InsertOne(ctx, asset); err != nil {
		return fmt.Errorf("save asset %s: %w", asset.ID, err)
	}
	return nil
}
