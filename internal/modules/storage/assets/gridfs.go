package assets

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mx-space/content-migrate/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFSUploader keeps asset bytes in MongoDB GridFS.
type GridFSUploader struct {
	bucket   *gridfs.Bucket
	recorder Recorder
}

func NewGridFSUploader(db *mongo.Database, bucketName string, recorder Recorder) (*GridFSUploader, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("open gridfs bucket: %w", err)
	}
	return &GridFSUploader{bucket: bucket, recorder: recorder}, nil
}

func (u *GridFSUploader) Upload(ctx context.Context, asset Asset) (string, error) {
	id := newAssetID(asset)
	opts := options.GridFSUpload().SetMetadata(bson.M{
		"assetId":     id,
		"contentType": asset.ContentType,
		"sourceUrl":   asset.SourceURL,
	})

	// gridfs.Bucket takes its deadline from the bucket, not from ctx.
	if deadline, ok := ctx.Deadline(); ok {
		if err := u.bucket.SetWriteDeadline(deadline); err != nil {
			return "", err
		}
	}
	fileID, err := u.bucket.UploadFromStream(asset.Filename, bytes.NewReader(asset.Data), opts)
	if err != nil {
		return "", fmt.Errorf("gridfs upload: %w", err)
	}

	record := &models.AssetModel{
		Kind:        asset.kind(),
		FileName:    asset.Filename,
		ContentType: asset.ContentType,
		Size:        int64(len(asset.Data)),
		SHA256:      asset.sha256(),
		ObjectKey:   "gridfs:" + fileID.Hex(),
		SourceURL:   asset.SourceURL,
	}
	record.ID = id
	if err := u.recorder.SaveAsset(ctx, record); err != nil {
		return "", fmt.Errorf("record asset: %w", err)
	}
	return id, nil
}
