package models

// SlugTrackerModel tracks slug history for redirects.
type SlugTrackerModel struct {
	Base     `bson:",inline"`
	Slug     string `json:"slug"      gorm:"index;not null;size:191" bson:"slug"`
	Type     string `json:"type"      gorm:"index;not null;size:64"  bson:"type"` // document _type
	TargetID string `json:"target_id" gorm:"index;not null;size:64"  bson:"target_id"`
}

func (SlugTrackerModel) TableName() string { return "slug_trackers" }

// AssetModel records a binary uploaded during migration and where it lives.
type AssetModel struct {
	Base        `bson:",inline"`
	Kind        string `json:"kind"         gorm:"index;size:16;default:'image'" bson:"kind"` // image | file
	FileName    string `json:"originalFilename"                                   bson:"originalFilename"`
	ContentType string `json:"mimeType"     gorm:"size:128"                       bson:"mimeType"`
	Size        int64  `json:"size"                                               bson:"size"`
	SHA256      string `json:"sha256hash"   gorm:"index;size:64"                  bson:"sha256hash"`
	ObjectKey   string `json:"path"                                               bson:"path"`
	URL         string `json:"url"          gorm:"type:text"                      bson:"url"`
	SourceURL   string `json:"sourceUrl"    gorm:"type:text"                      bson:"sourceUrl"`
}

func (AssetModel) TableName() string { return "assets" }
