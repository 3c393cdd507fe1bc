package front

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vudara/aiconfig/internal/catalog"
	"github.com/vudara/aiconfig/internal/credstore"
	"github.com/vudara/aiconfig/internal/ledger"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/promptstore"
	"github.com/vudara/aiconfig/internal/resolver"
	"github.com/vudara/aiconfig/internal/scope"
	"github.com/vudara/aiconfig/internal/secretbox"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

type fixture struct {
	conn         *gorm.DB
	engine       *gin.Engine
	providerID   uint64
	credentialID uint64
}

func setup(t *testing.T) *fixture {
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
		&models.Provider{},
		&models.Model{},
		&models.Credential{},
		&models.PromptTemplate{},
		&models.UsageLog{},
	); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}

	codec, errCodec := secretbox.New(bytes.Repeat([]byte{0x33}, secretbox.KeySize))
	if errCodec != nil {
		t.Fatalf("new codec: %v", errCodec)
	}

	ctx := context.Background()
	catalogStore := catalog.NewStore(conn)
	credentialStore := credstore.NewStore(conn, codec)
	templateStore := promptstore.NewStore(conn)

	provider, errProvider := catalogStore.CreateProvider(ctx, catalog.CreateProviderParams{
		Name: "openai", DisplayName: "OpenAI", BaseURL: "https://api.openai.com/v1",
	})
	if errProvider != nil {
		t.Fatalf("create provider: %v", errProvider)
	}
	if _, errModel := catalogStore.CreateModel(ctx, catalog.CreateModelParams{
		ProviderID: provider.ID, Name: "gpt-4", DisplayName: "GPT-4", MaxTokens: 8192,
	}); errModel != nil {
		t.Fatalf("create model: %v", errModel)
	}
	credential, errCred := credentialStore.Create(ctx, credstore.CreateParams{
		ProviderID: provider.ID, Scope: scope.Platform(),
		KeyName: "platform", Secret: "sk-live-test", IsDefault: true, CreatedBy: "system",
	})
	if errCred != nil {
		t.Fatalf("create credential: %v", errCred)
	}
	if _, errTemplate := templateStore.Create(ctx, promptstore.CreateParams{
		FeatureType: "idea_clarifier", Phase: models.PhaseIdeation,
		SystemPrompt: "You clarify product ideas.", Scope: scope.Platform(),
		IsDefault: true, CreatedBy: "system",
	}); errTemplate != nil {
		t.Fatalf("create template: %v", errTemplate)
	}

	engine := gin.New()
	RegisterFrontRoutes(engine,
		resolver.New(templateStore, credentialStore, catalogStore),
		ledger.New(conn))

	return &fixture{conn: conn, engine: engine, providerID: provider.ID, credentialID: credential.ID}
}

func postJSON(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, errMarshal := json.Marshal(body)
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestResolveEndpoint(t *testing.T) {
	f := setup(t)

	rec := postJSON(t, f.engine, "/v0/resolve", gin.H{
		"feature_type": "idea_clarifier",
		"user_id":      "u1",
		"phase":        "ideation",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var cfg struct {
		Provider     string `json:"provider"`
		Model        string `json:"model"`
		APIKey       string `json:"api_key"`
		SystemPrompt string `json:"system_prompt"`
		CredentialID uint64 `json:"credential_id"`
	}
	if errDecode := json.Unmarshal(rec.Body.Bytes(), &cfg); errDecode != nil {
		t.Fatalf("decode: %v", errDecode)
	}
	if cfg.Provider != "openai" || cfg.Model != "gpt-4" {
		t.Fatalf("unexpected selection %+v", cfg)
	}
	if cfg.APIKey != "sk-live-test" {
		t.Fatalf("expected decrypted key, got %q", cfg.APIKey)
	}
	if cfg.SystemPrompt != "You clarify product ideas." {
		t.Fatalf("unexpected prompt %q", cfg.SystemPrompt)
	}
	if cfg.CredentialID != f.credentialID {
		t.Fatalf("unexpected credential id %d", cfg.CredentialID)
	}
}

func TestResolveEndpointMissIs404(t *testing.T) {
	f := setup(t)

	rec := postJSON(t, f.engine, "/v0/resolve", gin.H{
		"feature_type": "nonexistent",
		"user_id":      "u1",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = postJSON(t, f.engine, "/v0/resolve", gin.H{"user_id": "u1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing feature_type, got %d", rec.Code)
	}
}

func TestUsageReportEndpoint(t *testing.T) {
	f := setup(t)

	rec := postJSON(t, f.engine, "/v0/usage", gin.H{
		"user_id":       "u1",
		"provider_id":   f.providerID,
		"model_id":      1,
		"credential_id": f.credentialID,
		"tokens_used":   900,
		"cost":          27,
		"response_time": 1200,
		"success":       true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var stored models.Credential
	if errFind := f.conn.First(&stored, f.credentialID).Error; errFind != nil {
		t.Fatalf("load credential: %v", errFind)
	}
	if stored.UsageCount != 1 {
		t.Fatalf("expected usage count 1, got %d", stored.UsageCount)
	}

	rec = postJSON(t, f.engine, "/v0/usage", gin.H{
		"provider_id": f.providerID, "model_id": 1, "credential_id": f.credentialID,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing user_id, got %d", rec.Code)
	}

	rec = postJSON(t, f.engine, "/v0/usage", gin.H{
		"user_id": "u1", "provider_id": f.providerID, "model_id": 1, "credential_id": 9999,
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown credential, got %d", rec.Code)
	}
}
