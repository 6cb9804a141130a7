package models

import "gorm.io/datatypes"

// AppSetting stores a keyed JSON preference document (theme, language,
// sort order, access lock hash).
type AppSetting struct {
	Key       string         `gorm:"primaryKey" json:"key"`
	Value     datatypes.JSON `json:"value"`
	UpdatedAt int64          `gorm:"autoUpdateTime:milli" json:"updatedAt"`
}

// TableName keeps the settings table clearly app-scoped.
func (AppSetting) TableName() string { return "app_settings" }
