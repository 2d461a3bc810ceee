package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/mx-space/content-migrate/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// replaceColumns are overwritten when a document id already exists.
// created_at is kept from the first insert.
var replaceColumns = []string{
	"updated_at", "doc_type", "locale", "slug_current", "title", "content", "tags", "published_at",
}

// ER_NO_SUCH_TABLE
const mysqlNoSuchTable = 1146

// Store persists documents and asset records in MySQL.
type Store struct {
	db       *gorm.DB
	readOnly bool
}

func NewStore(db *gorm.DB) *Store { return &Store{db: db} }

// ReadOnly returns a store for dry runs. The schema is not migrated then,
// so a missing documents table reads as an empty one.
func (s *Store) ReadOnly() *Store {
	return &Store{db: s.db, readOnly: true}
}

// FindByID returns the document with the given id, or (nil, nil).
func (s *Store) FindByID(ctx context.Context, id string) (*models.DocumentModel, error) {
	var doc models.DocumentModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) || (s.readOnly && isMissingTable(err)) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// CreateOrReplace writes doc under doc.ID, replacing every content field of
// an existing row.
func (s *Store) CreateOrReplace(ctx context.Context, doc *models.DocumentModel) error {
	if doc.ID == "" {
		return errors.New("document id is required")
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(replaceColumns),
	}).Create(doc).Error
	if err != nil {
		return fmt.Errorf("upsert document %s: %w", doc.ID, err)
	}
	return nil
}

// SaveAsset inserts an uploaded asset record.
func (s *Store) SaveAsset(ctx context.Context, asset *models.AssetModel) error {
	if err := s.db.WithContext(ctx).Create(asset).Error; err != nil {
		return fmt.Errorf("save asset %s: %w", asset.ID, err)
	}
	return nil
}

func isMissingTable(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlNoSuchTable
}
