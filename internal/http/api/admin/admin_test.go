package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/vudara/aiconfig/internal/auth"
	"github.com/vudara/aiconfig/internal/catalog"
	"github.com/vudara/aiconfig/internal/config"
	"github.com/vudara/aiconfig/internal/credstore"
	"github.com/vudara/aiconfig/internal/ledger"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/promptstore"
	"github.com/vudara/aiconfig/internal/secretbox"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAdminAPI(t *testing.T) (*gorm.DB, *gin.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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
	if errMigrate := conn.AutoMigrate(
		&models.Admin{},
		&models.Provider{},
		&models.Model{},
		&models.Credential{},
		&models.PromptTemplate{},
		&models.UsageLog{},
	); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	codec, errCodec := secretbox.New(bytes.Repeat([]byte{0x44}, secretbox.KeySize))
	if errCodec != nil {
		t.Fatalf("new codec: %v", errCodec)
	}

	engine := gin.New()
	RegisterAdminRoutes(engine, Dependencies{
		DB:          conn,
		JWT:         config.JWTConfig{Secret: "test-secret", Expiry: time.Hour},
		Catalog:     catalog.NewStore(conn),
		Credentials: credstore.NewStore(conn, codec),
		Templates:   promptstore.NewStore(conn),
		Usage:       ledger.New(conn),
	})
	return conn, engine
}

func seedAdmin(t *testing.T, conn *gorm.DB) {
	t.Helper()
	hash, errHash := auth.HashPassword("correct-horse")
	if errHash != nil {
		t.Fatalf("hash: %v", errHash)
	}
	admin := models.Admin{Email: "root@example.com", Password: hash, Name: "Root", Active: true}
	if errCreate := conn.Create(&admin).Error; errCreate != nil {
		t.Fatalf("create admin: %v", errCreate)
	}
}

func doJSON(t *testing.T, engine *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, errMarshal := json.Marshal(body)
		if errMarshal != nil {
			t.Fatalf("marshal: %v", errMarshal)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, engine *gin.Engine) string {
	t.Helper()
	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"email":    "root@example.com",
		"password": "correct-horse",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var out struct {
		Token string `json:"token"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &out); errDecode != nil {
		t.Fatalf("decode login: %v", errDecode)
	}
	if out.Token == "" {
		t.Fatalf("expected a token")
	}
	return out.Token
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	conn, engine := setupAdminAPI(t)
	seedAdmin(t, conn)

	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"email": "root@example.com", "password": "wrong",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong password, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/login", "", gin.H{
		"email": "nobody@example.com", "password": "correct-horse",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", rec.Code)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	_, engine := setupAdminAPI(t)

	rec := doJSON(t, engine, http.MethodGet, "/v0/admin/providers", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestProviderAndCredentialLifecycle(t *testing.T) {
	conn, engine := setupAdminAPI(t)
	seedAdmin(t, conn)
	token := login(t, engine)

	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/providers", token, gin.H{
		"name": "OpenAI", "display_name": "OpenAI", "base_url": "https://api.openai.com/v1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create provider: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var provider struct {
		ID   uint64 `json:"id"`
		Name string `json:"name"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &provider); errDecode != nil {
		t.Fatalf("decode provider: %v", errDecode)
	}
	if provider.Name != "openai" {
		t.Fatalf("expected lowercased slug, got %q", provider.Name)
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/credentials", token, gin.H{
		"provider_id": provider.ID,
		"scope_type":  "team",
		"scope_id":    "t1",
		"key_name":    "prod key",
		"secret":      "sk-team-secret",
		"is_default":  true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create credential: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "sk-team-secret") {
		t.Fatalf("secret must never appear in responses: %s", rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/v0/admin/credentials?scope_type=team&scope_id=t1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list credentials: expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "sk-team-secret") {
		t.Fatalf("secret leaked in listing: %s", rec.Body.String())
	}
	var listing struct {
		Credentials []struct {
			ID        uint64 `json:"id"`
			KeyName   string `json:"key_name"`
			IsDefault bool   `json:"is_default"`
		} `json:"credentials"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &listing); errDecode != nil {
		t.Fatalf("decode listing: %v", errDecode)
	}
	if len(listing.Credentials) != 1 || !listing.Credentials[0].IsDefault {
		t.Fatalf("unexpected listing %+v", listing)
	}

	rec = doJSON(t, engine, http.MethodPost,
		fmt.Sprintf("/v0/admin/credentials/%d/disable", listing.Credentials[0].ID), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("disable credential: expected 200, got %d", rec.Code)
	}
}

func TestTemplateEndpoints(t *testing.T) {
	conn, engine := setupAdminAPI(t)
	seedAdmin(t, conn)
	token := login(t, engine)

	rec := doJSON(t, engine, http.MethodPost, "/v0/admin/templates", token, gin.H{
		"feature_type":  "idea_clarifier",
		"phase":         "ideation",
		"system_prompt": "You clarify ideas.",
		"model_config":  gin.H{"temperature": 0.5},
		"is_default":    true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create template: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodPost, "/v0/admin/templates", token, gin.H{
		"feature_type":  "idea_clarifier",
		"phase":         "not-a-phase",
		"system_prompt": "x",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown phase, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/v0/admin/templates?phase=ideation", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list templates: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "idea_clarifier") {
		t.Fatalf("expected template in listing: %s", rec.Body.String())
	}
}

func TestUsageStatsEndpoint(t *testing.T) {
	conn, engine := setupAdminAPI(t)
	seedAdmin(t, conn)
	token := login(t, engine)

	// One credential to attribute usage against.
	provider := models.Provider{Name: "openai", DisplayName: "OpenAI", IsActive: true}
	if errCreate := conn.Create(&provider).Error; errCreate != nil {
		t.Fatalf("create provider: %v", errCreate)
	}
	credential := models.Credential{
		ProviderID: provider.ID, ScopeType: "platform",
		KeyName: "k", EncryptedSecret: "aa:bb:cc", IsActive: true, CreatedBy: "system",
	}
	if errCreate := conn.Create(&credential).Error; errCreate != nil {
		t.Fatalf("create credential: %v", errCreate)
	}

	usageLedger := ledger.New(conn)
	for i := 0; i < 2; i++ {
		if _, errRecord := usageLedger.Record(context.Background(), ledger.Entry{
			UserID: "u1", ProviderID: provider.ID, ModelID: 1,
			CredentialID: credential.ID, TokensUsed: 100, Cost: 3, ResponseTime: 500, Success: true,
		}); errRecord != nil {
			t.Fatalf("record: %v", errRecord)
		}
	}

	rec := doJSON(t, engine, http.MethodGet, "/v0/admin/usage/stats?user_id=u1", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var summary struct {
		TotalCalls  int64 `json:"total_calls"`
		TotalTokens int64 `json:"total_tokens"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &summary); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if summary.TotalCalls != 2 || summary.TotalTokens != 200 {
		t.Fatalf("unexpected summary %+v", summary)
	}

	rec = doJSON(t, engine, http.MethodGet, "/v0/admin/usage/stats", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without user_id, got %d", rec.Code)
	}
}
