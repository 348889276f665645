// Package model 定义数据库表结构
package model

import (
	"gorm.io/gorm"
)

// AutoMigrate 迁移全部业务表
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Note{},
		&NoteCollaborator{},
	)
}
