package db

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vudara/aiconfig/internal/models"
	"gorm.io/gorm"
)

func testConn(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	conn, err := Open(dsn)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	sqlDB, errDB := conn.DB()
	if errDB != nil {
		t.Fatalf("sql db: %v", errDB)
	}
	sqlDB.SetMaxOpenConns(1)
	if errMigrate := Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return conn
}

func TestOpenDialects(t *testing.T) {
	conn := testConn(t)
	if !IsSQLite(conn) {
		t.Fatalf("expected sqlite dialect for file DSN")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	conn := testConn(t)

	for i := 0; i < 2; i++ {
		if errSeed := Seed(conn); errSeed != nil {
			t.Fatalf("seed pass %d: %v", i, errSeed)
		}
	}

	var providerCount, modelCount, templateCount int64
	if err := conn.Model(&models.Provider{}).Count(&providerCount).Error; err != nil {
		t.Fatalf("count providers: %v", err)
	}
	if err := conn.Model(&models.Model{}).Count(&modelCount).Error; err != nil {
		t.Fatalf("count models: %v", err)
	}
	if err := conn.Model(&models.PromptTemplate{}).Count(&templateCount).Error; err != nil {
		t.Fatalf("count templates: %v", err)
	}
	if providerCount != 3 {
		t.Fatalf("expected 3 providers, got %d", providerCount)
	}
	if modelCount != 7 {
		t.Fatalf("expected 7 models, got %d", modelCount)
	}
	if templateCount != 7 {
		t.Fatalf("expected 7 templates, got %d", templateCount)
	}

	var template models.PromptTemplate
	if err := conn.Where("feature_type = ?", "idea_clarifier").First(&template).Error; err != nil {
		t.Fatalf("load seeded template: %v", err)
	}
	if !template.IsDefault || template.ScopeType != "platform" {
		t.Fatalf("seeded template must be a platform default, got %+v", template)
	}
}

func TestDefaultCredentialIndexRejectsSecondDefault(t *testing.T) {
	conn := testConn(t)

	provider := models.Provider{Name: "openai", DisplayName: "OpenAI", IsActive: true}
	if err := conn.Create(&provider).Error; err != nil {
		t.Fatalf("create provider: %v", err)
	}

	first := models.Credential{
		ProviderID: provider.ID, ScopeType: "team", ScopeID: "t1",
		KeyName: "a", EncryptedSecret: "aa:bb:cc", IsActive: true, IsDefault: true, CreatedBy: "x",
	}
	if err := conn.Create(&first).Error; err != nil {
		t.Fatalf("create first default: %v", err)
	}

	second := models.Credential{
		ProviderID: provider.ID, ScopeType: "team", ScopeID: "t1",
		KeyName: "b", EncryptedSecret: "dd:ee:ff", IsActive: true, IsDefault: true, CreatedBy: "x",
	}
	err := conn.Create(&second).Error
	if err == nil {
		t.Fatalf("expected unique index to reject a second active default")
	}
	if !IsUniqueViolation(err) {
		t.Fatalf("expected unique violation, got %v", err)
	}

	// An inactive default in the same scope is allowed.
	third := models.Credential{
		ProviderID: provider.ID, ScopeType: "team", ScopeID: "t1",
		KeyName: "c", EncryptedSecret: "11:22:33", IsActive: false, IsDefault: true, CreatedBy: "x",
	}
	if errThird := conn.Create(&third).Error; errThird != nil {
		t.Fatalf("inactive default should not collide: %v", errThird)
	}
}
