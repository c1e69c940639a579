package model

import "time"

// Follow 关注关系（User 关注 Author）
type Follow struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	UserID   uint   `gorm:"not null;index:idx_follow_user;index:idx_follow_pair,unique"`
	User     User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AuthorID uint   `gorm:"not null;index:idx_follow_author;index:idx_follow_pair,unique"`
	Author   User   `gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (user_id, author_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
