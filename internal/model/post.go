package model

import "time"

// Post 帖子；作者必填，分组与图片可选
type Post struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	AuthorID  uint      `gorm:"not null;index:idx_post_author" json:"author_id"`
	Author    User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE" json:"author"`
	GroupID   *uint     `gorm:"index:idx_post_group" json:"group_id,omitempty"`
	Group     *Group    `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL" json:"group,omitempty"`
	Image     string    `gorm:"type:varchar(255)" json:"image,omitempty"`
	CreatedAt time.Time `gorm:"index:idx_post_created;autoCreateTime" json:"created"`
}

func (Post) TableName() string { return "posts" }

// HasImage reports whether an uploaded image is attached.
func (p *Post) HasImage() bool { return p.Image != "" }
