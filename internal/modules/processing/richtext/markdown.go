package richtext

import (
	"context"

	"github.com/mx-space/content-migrate/internal/models"
	"github.com/mx-space/content-migrate/internal/modules/processing/markdown"
)

// MarkdownToBlocks renders markdown to HTML and converts the result.
func (c *Converter) MarkdownToBlocks(ctx context.Context, seed, text string) []models.Block {
	return c.HTMLToBlocks(ctx, seed, markdown.Render(text))
}
