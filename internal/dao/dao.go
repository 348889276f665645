// Package dao 实现数据访问层
package dao

import (
	"fmt"
	"os"
	"time"

	"github.com/notehive/collab-note-service/pkg/fileurl"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Database 数据库连接配置
type Database struct {
	Type         string
	Path         string
	Host         string
	UserName     string
	Password     string
	Name         string
	Charset      string
	ParseTime    bool
	TablePrefix  string
	MaxIdleConns int
	MaxOpenConns int
	Debug        bool
}

// Dao 数据访问对象
type Dao struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Dao {
	return &Dao{db: db}
}

func (d *Dao) DB() *gorm.DB {
	return d.db
}

func dialector(c Database) (gorm.Dialector, error) {
	switch c.Type {
	case "mysql":
		return mysql.Open(fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName,
			c.Password,
			c.Host,
			c.Name,
			c.Charset,
			c.ParseTime,
		)), nil
	case "postgres":
		return postgres.Open(fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host,
			c.UserName,
			c.Password,
			c.Name,
		)), nil
	case "sqlite", "":
		if c.Path == "" {
			c.Path = "storage/database/notes.db"
		}
		if !fileurl.IsExist(c.Path) {
			fileurl.CreatePath(c.Path, os.ModePerm)
		}
		return sqlite.Open(c.Path), nil
	}
	return nil, fmt.Errorf("unsupported database type: %s", c.Type)
}

// NewDBEngine 按配置创建 GORM 连接
func NewDBEngine(c Database) (*gorm.DB, error) {
	d, err := dialector(c)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(d, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}
	if c.Debug {
		db.Config.Logger = logger.Default.LogMode(logger.Info)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Minute * 10)

	return db, nil
}
