package database

import (
	"log"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"filevault-manager/config"
	"filevault-manager/models"
)

var DB *gorm.DB

// InitDB 初始化数据库
func InitDB() {
	var err error

	dbPath := config.GetConfig().DBPath
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatal("Failed to create data directory:", err)
	}

	DB, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	if err := Migrate(DB); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	log.Printf("Database initialized successfully at: %s", dbPath)
}

// Migrate 自动迁移数据库结构。测试中也会对内存库调用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.File{},
		&models.DeletedFile{},
	)
}
