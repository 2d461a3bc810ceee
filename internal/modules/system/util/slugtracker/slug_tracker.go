package slugtracker

import (
	"context"
	"errors"

	"github.com/mx-space/content-migrate/internal/models"
	"gorm.io/gorm"
)

// Service provides slug tracking operations backed by MySQL.
type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// Track records that oldSlug for the given document type now points to targetID.
func (s *Service) Track(ctx context.Context, oldSlug, docType, targetID string) error {
	tracker := models.SlugTrackerModel{
		Slug:     oldSlug,
		Type:     docType,
		TargetID: targetID,
	}

	return s.db.WithContext(ctx).
		Where(models.SlugTrackerModel{Slug: oldSlug, Type: docType}).
		Assign(models.SlugTrackerModel{TargetID: targetID}).
		FirstOrCreate(&tracker).Error
}

// FindBySlug returns the current targetID for the given old slug, or ("", nil)
func (s *Service) FindBySlug(ctx context.Context, slug, docType string) (string, error) {
	var tracker models.SlugTrackerModel
	err := s.db.WithContext(ctx).Where("slug = ? AND type = ?", slug, docType).First(&tracker).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return tracker.TargetID, nil
}
