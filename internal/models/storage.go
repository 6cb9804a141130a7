package models

// Storage is a top-level container (a warehouse or location) owning folders.
//
// Timestamps are epoch milliseconds so they round-trip through the export
// document without conversion.
type Storage struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `gorm:"autoCreateTime:milli" json:"createdAt"`

	Folders []Folder `gorm:"foreignKey:StorageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the legacy table name shared with the export document.
func (Storage) TableName() string { return "storages" }
