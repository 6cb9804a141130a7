package models

// Product is an inventory item stored inside a folder. Products have no
// nesting of their own and are removed with their folder.
type Product struct {
	ID          int64  `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string `gorm:"not null;index" json:"name"`
	Description string `json:"description"`
	FolderID    int64  `gorm:"not null;index" json:"folderId"`
	IsMarked    bool   `gorm:"not null;default:false" json:"isMarked"`
	CreatedAt   int64  `gorm:"index;autoCreateTime:milli" json:"createdAt"`

	Folder *Folder `gorm:"foreignKey:FolderID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName pins the legacy table name.
func (Product) TableName() string { return "products" }
