package assets

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mx-space/content-migrate/internal/models"
	"github.com/mx-space/content-migrate/internal/modules/storage/objectstore"
)

// Asset is a fetched binary waiting to be stored.
type Asset struct {
	Filename    string
	ContentType string
	Data        []byte
	SourceURL   string
}

func (a Asset) kind() string {
	if strings.HasPrefix(a.ContentType, "image/") {
		return "image"
	}
	return "file"
}

func (a Asset) sha256() string {
	sum := sha256.Sum256(a.Data)
	return hex.EncodeToString(sum[:])
}

// Uploader stores an asset and returns its store-assigned id.
type Uploader interface {
	Upload(ctx context.Context, asset Asset) (string, error)
}

// Recorder persists asset records next to the documents.
type Recorder interface {
	SaveAsset(ctx context.Context, asset *models.AssetModel) error
}

// ObjectUploader puts the bytes into an object store and records the asset.
type ObjectUploader struct {
	store    objectstore.Store
	recorder Recorder
	now      func() time.Time
}

func NewObjectUploader(store objectstore.Store, recorder Recorder) *ObjectUploader {
	return &ObjectUploader{store: store, recorder: recorder, now: time.Now}
}

func (u *ObjectUploader) Upload(ctx context.Context, asset Asset) (string, error) {
	id := newAssetID(asset)
	objectKey := path.Join(asset.kind()+"s", u.now().UTC().Format("2006/01"), id+path.Ext(asset.Filename))

	publicURL, err := u.store.Put(ctx, objectKey, asset.Data, asset.ContentType)
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}

	record := &models.AssetModel{
		Kind:        asset.kind(),
		FileName:    asset.Filename,
		ContentType: asset.ContentType,
		Size:        int64(len(asset.Data)),
		SHA256:      asset.sha256(),
		ObjectKey:   objectKey,
		URL:         publicURL,
		SourceURL:   asset.SourceURL,
	}
	record.ID = id
	if err := u.recorder.SaveAsset(ctx, record); err != nil {
		return "", fmt.Errorf("record asset: %w", err)
	}
	return id, nil
}

// DryRunUploader stores nothing. The returned id is derived from the content
// so dry runs print stable references.
type DryRunUploader struct{}

func (DryRunUploader) Upload(_ context.Context, asset Asset) (string, error) {
	return asset.kind() + "-dryrun-" + asset.sha256()[:16], nil
}

func newAssetID(asset Asset) string {
	return asset.kind() + "-" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
