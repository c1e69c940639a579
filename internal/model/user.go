package model

import "time"

// User 外部身份（仅保存登录所需字段）
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"type:varchar(150);not null;uniqueIndex" json:"username"`
	Email     string    `gorm:"type:varchar(254)" json:"email"`
	Password  string    `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
