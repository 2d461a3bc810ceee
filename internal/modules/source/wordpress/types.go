package wordpress

import "encoding/json"

type rendered struct {
	Rendered string `json:"rendered"`
}

type post struct {
	ID       json.Number `json:"id"`
	Slug     string      `json:"slug"`
	Link     string      `json:"link"`
	Title    rendered    `json:"title"`
	Content  rendered    `json:"content"`
	Date     string      `json:"date"`
	DateGMT  string      `json:"date_gmt"`
	Lang     string      `json:"lang"`
	Embedded embedded    `json:"_embedded"`
}

type embedded struct {
	Terms [][]term `json:"wp:term"`
}

type term struct {
	Name     string `json:"name"`
	Taxonomy string `json:"taxonomy"`
}
