package model

// Group 帖子分组，slug 为对外稳定的 URL 键
type Group struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Slug        string `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug"`
	Description string `gorm:"type:text" json:"description"`
}

func (Group) TableName() string { return "groups" }
