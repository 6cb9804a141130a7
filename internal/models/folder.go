package models

// Folder is a named, optionally nested container belonging to exactly one
// storage. ParentFolderID is nil for root folders of a storage.
//
// UpdatedAt is managed by the service layer, not by gorm: it advances on
// every content or relationship change, including favorite toggles, and the
// bulk loader must be able to write imported values verbatim.
type Folder struct {
	ID             int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name           string `gorm:"not null;index" json:"name"`
	Description    string `json:"description"`
	StorageID      int64  `gorm:"not null;index" json:"storageId"`
	ParentFolderID *int64 `gorm:"index" json:"parentFolderId"`
	IsMarked       bool   `gorm:"not null;default:false" json:"isMarked"`
	CreatedAt      int64  `gorm:"index;autoCreateTime:milli" json:"createdAt"`
	UpdatedAt      int64  `gorm:"autoUpdateTime:false" json:"updatedAt"`

	Storage  *Storage `gorm:"foreignKey:StorageID;constraint:OnDelete:CASCADE" json:"-"`
	Children []Folder `gorm:"foreignKey:ParentFolderID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the legacy table name shared with the export document.
func (Folder) TableName() string { return "folders" }
