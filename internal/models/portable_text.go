package models

import (
	"encoding/json"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

// Block types.
const (
	BlockTypeText  = "block"
	BlockTypeImage = "image"
)

// Text block styles.
const (
	StyleNormal     = "normal"
	StyleBlockquote = "blockquote"
)

// List item kinds.
const (
	ListBullet = "bullet"
	ListNumber = "number"
)

// Decorator marks.
const (
	MarkStrong        = "strong"
	MarkEm            = "em"
	MarkCode          = "code"
	MarkUnderline     = "underline"
	MarkStrikeThrough = "strike-through"
)

// Span is a run of text inside a text block carrying the marks active at
// that point. Marks hold decorator names and link mark keys.
type Span struct {
	Key   string   `json:"_key"  bson:"_key"`
	Type  string   `json:"_type" bson:"_type"`
	Text  string   `json:"text"  bson:"text"`
	Marks []string `json:"marks" bson:"marks"`
}

// MarkDef is the out-of-line definition of an annotation mark, e.g. a link.
type MarkDef struct {
	Key  string `json:"_key"  bson:"_key"`
	Type string `json:"_type" bson:"_type"`
	Href string `json:"href"  bson:"href"`
}

// AssetReference points at an uploaded binary in the target store.
type AssetReference struct {
	Type string `json:"_type" bson:"_type"`
	Ref  string `json:"_ref"  bson:"_ref"`
}

// NewAssetReference wraps a store-assigned asset id.
func NewAssetReference(id string) *AssetReference {
	return &AssetReference{Type: "reference", Ref: id}
}

// Block is one structural unit of converted content. Type selects which
// fields are meaningful: text blocks use Style/MarkDefs/Children/ListItem,
// image blocks use Asset/Alt/Caption.
type Block struct {
	Key  string
	Type string

	Style    string
	ListItem string
	Level    int
	MarkDefs []MarkDef
	Children []Span

	Asset   *AssetReference
	Alt     string
	Caption string
}

type textBlockJSON struct {
	Key      string    `json:"_key"               bson:"_key"`
	Type     string    `json:"_type"              bson:"_type"`
	Style    string    `json:"style"              bson:"style"`
	ListItem string    `json:"listItem,omitempty" bson:"listItem,omitempty"`
	Level    int       `json:"level,omitempty"    bson:"level,omitempty"`
	MarkDefs []MarkDef `json:"markDefs"           bson:"markDefs"`
	Children []Span    `json:"children"           bson:"children"`
}

type imageBlockJSON struct {
	Key     string          `json:"_key"    bson:"_key"`
	Type    string          `json:"_type"   bson:"_type"`
	Asset   *AssetReference `json:"asset"   bson:"asset"`
	Alt     string          `json:"alt"     bson:"alt"`
	Caption string          `json:"caption" bson:"caption"`
}

// IsText reports whether b is a text block.
func (b Block) IsText() bool { return b.Type == BlockTypeText }

// PlainText concatenates the text of all spans.
func (b Block) PlainText() string {
	var sb strings.Builder
	for _, s := range b.Children {
		sb.WriteString(s.Text)
	}
	return sb.String()
}

func (b Block) encoded() interface{} {
	if b.Type == BlockTypeImage {
		return imageBlockJSON{Key: b.Key, Type: b.Type, Asset: b.Asset, Alt: b.Alt, Caption: b.Caption}
	}
	markDefs := b.MarkDefs
	if markDefs == nil {
		markDefs = []MarkDef{}
	}
	children := make([]Span, len(b.Children))
	for i, s := range b.Children {
		if s.Marks == nil {
			s.Marks = []string{}
		}
		children[i] = s
	}
	return textBlockJSON{
		Key: b.Key, Type: b.Type, Style: b.Style, ListItem: b.ListItem, Level: b.Level,
		MarkDefs: markDefs, Children: children,
	}
}

func (b Block) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.encoded())
}

func (b Block) MarshalBSON() ([]byte, error) {
	return bson.Marshal(b.encoded())
}

func (b *Block) UnmarshalBSON(data []byte) error {
	var probe struct {
		Type string `bson:"_type"`
	}
	if err := bson.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Type == BlockTypeImage {
		var img imageBlockJSON
		if err := bson.Unmarshal(data, &img); err != nil {
			return err
		}
		b.fromImage(img)
		return nil
	}
	var txt textBlockJSON
	if err := bson.Unmarshal(data, &txt); err != nil {
		return err
	}
	b.fromText(txt)
	return nil
}

func (b *Block) fromImage(img imageBlockJSON) {
	*b = Block{Key: img.Key, Type: img.Type, Asset: img.Asset, Alt: img.Alt, Caption: img.Caption}
}

func (b *Block) fromText(txt textBlockJSON) {
	*b = Block{
		Key: txt.Key, Type: txt.Type, Style: txt.Style, ListItem: txt.ListItem, Level: txt.Level,
		MarkDefs: txt.MarkDefs, Children: txt.Children,
	}
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type string `json:"_type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.Type == BlockTypeImage {
		var img imageBlockJSON
		if err := json.Unmarshal(data, &img); err != nil {
			return err
		}
		b.fromImage(img)
		return nil
	}
	var txt textBlockJSON
	if err := json.Unmarshal(data, &txt); err != nil {
		return err
	}
	b.fromText(txt)
	return nil
}
