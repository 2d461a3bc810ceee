package migration

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/mx-space/content-migrate/internal/models"
	"github.com/mx-space/content-migrate/internal/modules/processing/richtext"
	"github.com/mx-space/content-migrate/internal/modules/source"
	"github.com/mx-space/content-migrate/internal/modules/system/util/slugtracker"
	"go.uber.org/zap"
)

// DocumentStore is the target the pipeline writes into.
type DocumentStore interface {
	FindByID(ctx context.Context, id string) (*models.DocumentModel, error)
	CreateOrReplace(ctx context.Context, doc *models.DocumentModel) error
}

// SlugTracker records slugs a document used to be reachable under.
type SlugTracker interface {
	Track(ctx context.Context, oldSlug, docType, targetID string) error
}

// BlockConverter turns item bodies into blocks.
type BlockConverter interface {
	HTMLToBlocks(ctx context.Context, seed, fragment string) []models.Block
	MarkdownToBlocks(ctx context.Context, seed, text string) []models.Block
}

// Options selects what kind of document a run produces.
type Options struct {
	DocType       string
	IDPrefix      string
	DefaultLocale string
	DryRun        bool
	WithTags      bool
}

// Outcome is the result of migrating one item.
type Outcome int

const (
	OutcomeFailed Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "error"
	}
}

// Summary counts the outcomes of a run.
type Summary struct {
	Checked int
	Created int
	Updated int
	Failed  int
}

// Succeeded is the number of items written (or that would be, in a dry run).
func (s Summary) Succeeded() int { return s.Created + s.Updated }

// Pipeline converts source items into documents and upserts them.
type Pipeline struct {
	store     DocumentStore
	converter BlockConverter
	tracker   SlugTracker
	opts      Options
	logger    *zap.Logger
	now       func() time.Time
}

func New(store DocumentStore, converter BlockConverter, opts Options, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{store: store, converter: converter, opts: opts, logger: logger, now: time.Now}
}

// SetSlugTracker wires up slug change tracking (optional).
func (p *Pipeline) SetSlugTracker(t SlugTracker) { p.tracker = t }

// DocumentID is the target id of an item.
func (p *Pipeline) DocumentID(item source.Item) string {
	return p.opts.IDPrefix + strings.TrimSpace(item.ID)
}

// MigrateItem converts item and creates or replaces its document. locale is
// used when the item carries none.
func (p *Pipeline) MigrateItem(ctx context.Context, item source.Item, locale string) (Outcome, error) {
	if strings.TrimSpace(item.ID) == "" {
		return OutcomeFailed, fmt.Errorf("item has no id")
	}
	id := p.DocumentID(item)

	existing, err := p.store.FindByID(ctx, id)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("lookup %s: %w", id, err)
	}

	doc := p.buildDocument(ctx, id, item, locale, existing)

	outcome := OutcomeCreated
	if existing != nil {
		outcome = OutcomeUpdated
	}
	if p.opts.DryRun {
		p.logger.Info("dry run",
			zap.String("id", id),
			zap.String("outcome", outcome.String()),
			zap.String("slug", doc.Slug.Current),
			zap.Int("blocks", len(doc.Content)),
		)
		return outcome, nil
	}

	if err := p.store.CreateOrReplace(ctx, doc); err != nil {
		return OutcomeFailed, err
	}
	p.trackSlugChange(ctx, existing, doc)

	p.logger.Info("document migrated",
		zap.String("id", id),
		zap.String("outcome", outcome.String()),
		zap.Int("blocks", len(doc.Content)),
	)
	return outcome, nil
}

func (p *Pipeline) buildDocument(ctx context.Context, id string, item source.Item, locale string, existing *models.DocumentModel) *models.DocumentModel {
	title := richtext.PlainText(item.Title)

	slugSource := item.Slug
	if strings.TrimSpace(slugSource) == "" {
		slugSource = title
	}

	var content []models.Block
	if item.IsMarkdown() {
		content = p.converter.MarkdownToBlocks(ctx, id, item.Content)
	} else {
		content = p.converter.HTMLToBlocks(ctx, id, item.Content)
	}

	doc := &models.DocumentModel{
		Type:    p.opts.DocType,
		Locale:  p.resolveLocale(item, locale),
		Slug:    models.SlugField{Current: slugtracker.Slugify(slugSource, id)},
		Title:   title,
		Content: content,
	}
	doc.ID = id
	if p.opts.WithTags {
		doc.Tags = dedupe(item.Tags)
	}

	if !item.Date.IsZero() {
		published := item.Date.UTC()
		doc.PublishedAt = &published
	} else if existing != nil {
		doc.PublishedAt = existing.PublishedAt
	}

	now := p.now()
	doc.CreatedAt, doc.UpdatedAt = now, now
	if existing != nil && !existing.CreatedAt.IsZero() {
		doc.CreatedAt = existing.CreatedAt
	}
	return doc
}

func (p *Pipeline) resolveLocale(item source.Item, locale string) string {
	for _, candidate := range []string{item.Locale, locale, p.opts.DefaultLocale} {
		if v := strings.TrimSpace(candidate); v != "" {
			return v
		}
	}
	return ""
}

func (p *Pipeline) trackSlugChange(ctx context.Context, existing, doc *models.DocumentModel) {
	if p.tracker == nil || existing == nil {
		return
	}
	oldSlug := existing.Slug.Current
	if oldSlug == "" || oldSlug == doc.Slug.Current {
		return
	}
	if err := p.tracker.Track(ctx, oldSlug, doc.Type, doc.ID); err != nil {
		p.logger.Warn("track slug failed", zap.String("id", doc.ID), zap.String("old_slug", oldSlug), zap.Error(err))
		return
	}
	p.logger.Info("slug changed", zap.String("id", doc.ID), zap.String("from", oldSlug), zap.String("to", doc.Slug.Current))
}

// Run migrates items one after another. A failing item is logged and
// counted; the batch continues. Cancelling ctx stops before the next item.
func (p *Pipeline) Run(ctx context.Context, items []source.Item) Summary {
	var summary Summary
	for _, item := range items {
		if ctx.Err() != nil {
			p.logger.Warn("run cancelled", zap.Int("remaining", len(items)-summary.Checked))
			break
		}
		summary.Checked++

		outcome, err := p.migrateSafely(ctx, item)
		switch {
		case err != nil:
			summary.Failed++
			p.logger.Error("migrate item failed", zap.String("id", p.DocumentID(item)), zap.Error(err))
		case outcome == OutcomeCreated:
			summary.Created++
		case outcome == OutcomeUpdated:
			summary.Updated++
		}
	}

	p.logger.Info("migration finished",
		zap.String("type", p.opts.DocType),
		zap.Bool("dry_run", p.opts.DryRun),
		zap.Int("checked", summary.Checked),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("errors", summary.Failed),
	)
	return summary
}

func (p *Pipeline) migrateSafely(ctx context.Context, item source.Item) (outcome Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Debug("item panicked", zap.ByteString("stack", debug.Stack()))
			outcome, err = OutcomeFailed, fmt.Errorf("panic: %v", r)
		}
	}()
	return p.MigrateItem(ctx, item, p.opts.DefaultLocale)
}

func dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
