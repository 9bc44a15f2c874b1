package services

import (
	"fmt"
	"testing"

	"github.com/Nandhana895/Agri-backend-sub000/models"
	"github.com/Nandhana895/Agri-backend-sub000/storage"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB points the global DB at an in-memory sqlite instance for the
// duration of one test. Each test gets its own named database so state never
// leaks between them.
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	err = db.AutoMigrate(&models.User{}, &models.ChatRequest{}, &models.Conversation{}, &models.Message{})
	if err != nil {
		t.Fatalf("migrate test db: %v", err)
	}

	previous := storage.DB
	storage.DB = db
	t.Cleanup(func() {
		storage.DB = previous
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
}

func createTestUser(t *testing.T, email, role string) *models.User {
	t.Helper()
	user := models.User{Email: email, Role: role, FirstName: "Test", LastName: role}
	if err := storage.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}
