package app

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vudara/aiconfig/internal/auth"
	"github.com/vudara/aiconfig/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	sqlDB.SetMaxOpenConns(1)
	if errMigrate := conn.AutoMigrate(&models.Admin{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestEnsureInitialAdmin(t *testing.T) {
	conn := testDB(t)

	if errEnsure := EnsureInitialAdmin(conn, "Root@Example.com", "s3cret"); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}

	var admin models.Admin
	if errFind := conn.First(&admin).Error; errFind != nil {
		t.Fatalf("load admin: %v", errFind)
	}
	if admin.Email != "root@example.com" {
		t.Fatalf("expected lowercased email, got %q", admin.Email)
	}
	if !admin.Active {
		t.Fatalf("expected active admin")
	}
	if !auth.CheckPassword(admin.Password, "s3cret") {
		t.Fatalf("stored hash must verify the bootstrap password")
	}

	// A second call with different credentials must not touch the account.
	if errEnsure := EnsureInitialAdmin(conn, "other@example.com", "different"); errEnsure != nil {
		t.Fatalf("ensure again: %v", errEnsure)
	}
	var count int64
	if errCount := conn.Model(&models.Admin{}).Count(&count).Error; errCount != nil {
		t.Fatalf("count: %v", errCount)
	}
	if count != 1 {
		t.Fatalf("expected a single admin, got %d", count)
	}
}

func TestEnsureInitialAdminSkipsWithoutCredentials(t *testing.T) {
	conn := testDB(t)

	if errEnsure := EnsureInitialAdmin(conn, "", ""); errEnsure != nil {
		t.Fatalf("ensure: %v", errEnsure)
	}
	initialized, errCheck := HasAdminInitialized(conn)
	if errCheck != nil {
		t.Fatalf("check: %v", errCheck)
	}
	if initialized {
		t.Fatalf("expected no admin to be created")
	}
}
