package richtext

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mx-space/content-migrate/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeUploader struct {
	reachable map[string]bool
	calls     [][]string
}

func (f *fakeUploader) UploadWithFallback(_ context.Context, candidates []string) (*models.AssetReference, bool) {
	f.calls = append(f.calls, candidates)
	for _, candidate := range candidates {
		if f.reachable[candidate] {
			return models.NewAssetReference("image-" + candidate), true
		}
	}
	return nil, false
}

func convert(t *testing.T, fragment string) []models.Block {
	t.Helper()
	return NewConverter(nil, nil).HTMLToBlocks(context.Background(), "doc", fragment)
}

func texts(blocks []models.Block) []string {
	out := make([]string, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, b.PlainText())
	}
	return out
}

func TestHTMLToBlocksPreservesOrder(t *testing.T) {
	blocks := convert(t, `<p>A</p><h2>B</h2><ul><li>C</li></ul>`)
	require.Len(t, blocks, 3)

	assert.Equal(t, models.StyleNormal, blocks[0].Style)
	assert.Equal(t, "A", blocks[0].PlainText())
	assert.Empty(t, blocks[0].ListItem)

	assert.Equal(t, "h2", blocks[1].Style)
	assert.Equal(t, "B", blocks[1].PlainText())

	assert.Equal(t, models.StyleNormal, blocks[2].Style)
	assert.Equal(t, models.ListBullet, blocks[2].ListItem)
	assert.Equal(t, 1, blocks[2].Level)
	assert.Equal(t, "C", blocks[2].PlainText())
}

func TestHTMLToBlocksMarkComposition(t *testing.T) {
	blocks := convert(t, `<p><strong>bold <em>and italic</em></strong></p>`)
	require.Len(t, blocks, 1)
	spans := blocks[0].Children
	require.Len(t, spans, 2)

	assert.Equal(t, "bold ", spans[0].Text)
	assert.Equal(t, []string{models.MarkStrong}, spans[0].Marks)
	assert.Equal(t, "and italic", spans[1].Text)
	assert.Equal(t, []string{models.MarkStrong, models.MarkEm}, spans[1].Marks)
}

func TestHTMLToBlocksNestedMarksKeepOrder(t *testing.T) {
	blocks := convert(t, `<p><strong><a href="https://example.com"><code>x</code></a></strong></p>`)
	require.Len(t, blocks, 1)
	require.Len(t, blocks[0].MarkDefs, 1)
	linkKey := blocks[0].MarkDefs[0].Key

	require.Len(t, blocks[0].Children, 1)
	assert.Equal(t, []string{models.MarkStrong, linkKey, models.MarkCode}, blocks[0].Children[0].Marks)
}

func TestHTMLToBlocksDuplicateMarkIsNoop(t *testing.T) {
	blocks := convert(t, `<p><b><strong>x</strong></b></p>`)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{models.MarkStrong}, blocks[0].Children[0].Marks)
}

func TestHTMLToBlocksLinkDeduplication(t *testing.T) {
	blocks := convert(t, `<p><a href="/x">one</a> and <a href="/x">two</a></p>`)
	require.Len(t, blocks, 1)
	b := blocks[0]
	require.Len(t, b.MarkDefs, 1)
	assert.Equal(t, "/x", b.MarkDefs[0].Href)
	assert.Equal(t, "link", b.MarkDefs[0].Type)

	key := b.MarkDefs[0].Key
	var linked []string
	for _, s := range b.Children {
		if len(s.Marks) > 0 {
			assert.Equal(t, []string{key}, s.Marks)
			linked = append(linked, s.Text)
		}
	}
	assert.Equal(t, []string{"one", "two"}, linked)
}

func TestHTMLToBlocksLinkKeyStableAcrossBlocks(t *testing.T) {
	blocks := convert(t, `<p><a href="/x">one</a></p><h3><a href="/x">two</a></h3><p>plain</p>`)
	require.Len(t, blocks, 3)
	require.Len(t, blocks[0].MarkDefs, 1)
	require.Len(t, blocks[1].MarkDefs, 1)
	assert.Equal(t, blocks[0].MarkDefs[0].Key, blocks[1].MarkDefs[0].Key)
	assert.Empty(t, blocks[2].MarkDefs)
}

func TestHTMLToBlocksLinkCacheIsPerConversion(t *testing.T) {
	c := NewConverter(nil, nil)
	first := c.HTMLToBlocks(context.Background(), "doc-1", `<p><a href="/x">x</a></p>`)
	second := c.HTMLToBlocks(context.Background(), "doc-2", `<p><a href="/x">x</a></p>`)
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].MarkDefs[0].Key, second[0].MarkDefs[0].Key)
}

func TestHTMLToBlocksDecodesEntitiesOnce(t *testing.T) {
	blocks := convert(t, `<p>&lt;hello&gt; &amp; world</p>`)
	require.Len(t, blocks, 1)
	assert.Equal(t, "<hello> & world", blocks[0].PlainText())

	blocks = convert(t, `<p>&amp;lt;b&amp;gt;</p>`)
	require.Len(t, blocks, 1)
	assert.Equal(t, "&lt;b&gt;", blocks[0].PlainText())
}

func TestHTMLToBlocksDropsEmptyContent(t *testing.T) {
	uploader := &fakeUploader{}
	c := NewConverter(uploader, nil)

	assert.Empty(t, c.HTMLToBlocks(context.Background(), "d", `<p>   </p>`))
	assert.Empty(t, c.HTMLToBlocks(context.Background(), "d", `<script>alert(1)</script>`))
	assert.Empty(t, c.HTMLToBlocks(context.Background(), "d", `<style>p{}</style><noscript><img src="/a.png"></noscript>`))
	assert.Empty(t, c.HTMLToBlocks(context.Background(), "d", ``))
	assert.Empty(t, c.HTMLToBlocks(context.Background(), "d", `<ul><li> </li></ul><h1></h1><blockquote> </blockquote>`))
	assert.Empty(t, uploader.calls)

	blocks := c.HTMLToBlocks(context.Background(), "d", "")
	assert.NotNil(t, blocks)
}

func TestHTMLToBlocksStrayText(t *testing.T) {
	blocks := convert(t, "  loose text  <p>para</p>")
	assert.Equal(t, []string{"loose text", "para"}, texts(blocks))
	assert.Empty(t, blocks[0].Children[0].Marks)
}

func TestHTMLToBlocksContainers(t *testing.T) {
	blocks := convert(t, `<div><p>one</p><p>two</p></div><section><h4>three</h4></section><div>four <em>five</em></div>`)
	assert.Equal(t, []string{"one", "two", "three", "four five"}, texts(blocks))
	assert.Equal(t, "h4", blocks[2].Style)
	assert.Equal(t, models.StyleNormal, blocks[3].Style)
}

func TestHTMLToBlocksBlockquoteAndBreaks(t *testing.T) {
	blocks := convert(t, `<blockquote><p>line one<br>line two</p></blockquote>`)
	require.Len(t, blocks, 1)
	assert.Equal(t, models.StyleBlockquote, blocks[0].Style)
	assert.Equal(t, "line one\nline two", blocks[0].PlainText())
}

func TestHTMLToBlocksLists(t *testing.T) {
	blocks := convert(t, `<ol><li>first</li><li></li><li>second<ul><li>nested</li></ul></li></ol>`)
	require.Len(t, blocks, 2)
	for _, b := range blocks {
		assert.Equal(t, models.ListNumber, b.ListItem)
		assert.Equal(t, 1, b.Level)
	}
	assert.Equal(t, "first", blocks[0].PlainText())
	assert.Equal(t, "secondnested", blocks[1].PlainText())
}

func TestHTMLToBlocksExtraDecorators(t *testing.T) {
	blocks := convert(t, `<p><u>under</u><del>gone</del></p>`)
	require.Len(t, blocks, 1)
	assert.Equal(t, []string{models.MarkUnderline}, blocks[0].Children[0].Marks)
	assert.Equal(t, []string{models.MarkStrikeThrough}, blocks[0].Children[1].Marks)
}

func TestHTMLToBlocksImages(t *testing.T) {
	uploader := &fakeUploader{reachable: map[string]bool{"https://cdn.example.com/b-1024.jpg": true}}
	c := NewConverter(uploader, nil).WithBaseURL("https://cdn.example.com/")

	blocks := c.HTMLToBlocks(context.Background(), "d", `<p>before</p>
<figure><img src="/b.jpg" alt="Bee" title="ignored" srcset="/b.jpg 300w, https://cdn.example.com/b-1024.jpg 1024w">
<figcaption> A  <em>bee</em> </figcaption></figure>
<p>after</p>`)
	require.Len(t, blocks, 3)
	assert.Equal(t, "before", blocks[0].PlainText())
	assert.Equal(t, "after", blocks[2].PlainText())

	img := blocks[1]
	assert.Equal(t, models.BlockTypeImage, img.Type)
	assert.Equal(t, "Bee", img.Alt)
	assert.Equal(t, "A bee", img.Caption)
	require.NotNil(t, img.Asset)
	assert.Equal(t, "reference", img.Asset.Type)
	assert.Equal(t, "image-https://cdn.example.com/b-1024.jpg", img.Asset.Ref)

	require.Len(t, uploader.calls, 1)
	assert.Equal(t, []string{"https://cdn.example.com/b.jpg", "https://cdn.example.com/b-1024.jpg"}, uploader.calls[0])
}

func TestHTMLToBlocksImageCaptionFromTitle(t *testing.T) {
	uploader := &fakeUploader{reachable: map[string]bool{"https://x/a.png": true}}
	blocks := NewConverter(uploader, nil).HTMLToBlocks(context.Background(), "d",
		`<img data-src="https://x/a.png" title="Title caption">`)
	require.Len(t, blocks, 1)
	assert.Equal(t, "Title caption", blocks[0].Caption)
}

func TestHTMLToBlocksFailedImageDoesNotBlock(t *testing.T) {
	uploader := &fakeUploader{}
	blocks := NewConverter(uploader, nil).HTMLToBlocks(context.Background(), "d",
		`<p>a</p><img src="https://x/missing.png"><p>b</p>`)
	assert.Equal(t, []string{"a", "b"}, texts(blocks))
	assert.Len(t, uploader.calls, 1)
}

func TestHTMLToBlocksDeterministicKeys(t *testing.T) {
	const fragment = `<p>one <a href="/x">two</a></p><ul><li>three</li></ul>`
	c := NewConverter(nil, nil)

	first, err := json.Marshal(c.HTMLToBlocks(context.Background(), "support-1", fragment))
	require.NoError(t, err)
	second, err := json.Marshal(c.HTMLToBlocks(context.Background(), "support-1", fragment))
	require.NoError(t, err)
	other, err := json.Marshal(c.HTMLToBlocks(context.Background(), "support-2", fragment))
	require.NoError(t, err)

	assert.JSONEq(t, string(first), string(second))
	assert.NotEqual(t, string(first), string(other))
}

func TestBlockJSONShape(t *testing.T) {
	blocks := convert(t, `<p>plain</p>`)
	raw, err := json.Marshal(blocks[0])
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "block", decoded["_type"])
	assert.Equal(t, []any{}, decoded["markDefs"])
	assert.NotContains(t, decoded, "listItem")
	children := decoded["children"].([]any)
	assert.Equal(t, []any{}, children[0].(map[string]any)["marks"])

	var back models.Block
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "plain", back.PlainText())
}

func TestMarkdownToBlocks(t *testing.T) {
	blocks := NewConverter(nil, nil).MarkdownToBlocks(context.Background(), "d", "# Title\n\nSome **bold** text\n\n- a\n- b\n")
	require.Len(t, blocks, 4)
	assert.Equal(t, "h1", blocks[0].Style)
	assert.Equal(t, "Some bold text", blocks[1].PlainText())
	assert.Equal(t, models.ListBullet, blocks[2].ListItem)
	assert.Equal(t, models.ListBullet, blocks[3].ListItem)
}

func TestHTMLToBlocksFullDocumentSkipsHead(t *testing.T) {
	blocks := convert(t, `<!DOCTYPE html><html><head><title>Site title</title><style>p{}</style></head><body><p>Body</p></body></html>`)
	assert.Equal(t, []string{"Body"}, texts(blocks))
}

func TestHTMLToBlocksLogsInlineImages(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	uploader := &fakeUploader{}
	c := NewConverter(uploader, zap.New(core))

	blocks := c.HTMLToBlocks(context.Background(), "d", `<p>see <a href="/big.png"><img src="/thumb.png"></a> here</p><p><img src="/solo.png"></p>`)
	assert.Equal(t, []string{"see  here"}, texts(blocks))
	assert.Empty(t, uploader.calls)

	dropped := logs.FilterMessage("inline image dropped").All()
	require.Len(t, dropped, 2)
	assert.Equal(t, "/thumb.png", dropped[0].ContextMap()["src"])
	assert.Equal(t, "/solo.png", dropped[1].ContextMap()["src"])
}
