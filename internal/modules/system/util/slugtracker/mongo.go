package slugtracker

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mx-space/content-migrate/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoService stores slug history in a MongoDB collection.
type MongoService struct{ coll *mongo.Collection }

func NewMongoService(db *mongo.Database) *MongoService {
	return &MongoService{coll: db.Collection(models.SlugTrackerModel{}.TableName())}
}

func (s *MongoService) Track(ctx context.Context, oldSlug, docType, targetID string) error {
	now := time.Now()
	_, err := s.coll.UpdateOne(ctx,
		bson.M{"slug": oldSlug, "type": docType},
		bson.M{
			"$set":         bson.M{"target_id": targetID, "_updatedAt": now},
			"$setOnInsert": bson.M{"_id": uuid.New().String(), "_createdAt": now},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (s *MongoService) FindBySlug(ctx context.Context, slug, docType string) (string, error) {
	var tracker models.SlugTrackerModel
	err := s.coll.FindOne(ctx, bson.M{"slug": slug, "type": docType}).Decode(&tracker)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tracker.TargetID, nil
}
