package db

import (
	"gorm.io/gorm"
)

// User 定义了用户模型
// Email 作为登录凭证，Password 存 bcrypt 哈希
type User struct {
	gorm.Model
	Email    string `gorm:"unique;not null"`
	Name     string
	Password string `gorm:"not null"`
}
