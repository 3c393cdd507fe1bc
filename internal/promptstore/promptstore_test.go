package promptstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/vudara/aiconfig/internal/apperr"
	"github.com/vudara/aiconfig/internal/models"
	"github.com/vudara/aiconfig/internal/scope"
	"gorm.io/gorm"
)

func testStore(t *testing.T) (*Store, *gorm.DB) {
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

	if errMigrate := conn.AutoMigrate(&models.PromptTemplate{}); errMigrate != nil {
		t.Fatalf("migrate: %v", errMigrate)
	}
	return NewStore(conn), conn
}

func mustCreate(t *testing.T, store *Store, params CreateParams) *models.PromptTemplate {
	t.Helper()
	row, err := store.Create(context.Background(), params)
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return row
}

func TestCreate_Validation(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	cases := []CreateParams{
		{FeatureType: "", SystemPrompt: "x", Scope: scope.Platform()},
		{FeatureType: "idea_clarifier", SystemPrompt: "  ", Scope: scope.Platform()},
		{FeatureType: "idea_clarifier", SystemPrompt: "x", Phase: "shipping", Scope: scope.Platform()},
		{FeatureType: "idea_clarifier", SystemPrompt: "x", Scope: scope.ForTeam("")},
	}
	for i, params := range cases {
		if _, err := store.Create(ctx, params); !errors.Is(err, apperr.ErrValidation) {
			t.Fatalf("case %d: expected ErrValidation, got %v", i, err)
		}
	}
}

func TestGetDefault_PlatformScopedOnly(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	mustCreate(t, store, CreateParams{
		FeatureType:  "idea_clarifier",
		Phase:        models.PhaseIdeation,
		SystemPrompt: "platform prompt",
		Scope:        scope.Platform(),
		IsDefault:    true,
		CreatedBy:    "system",
	})
	mustCreate(t, store, CreateParams{
		FeatureType:  "idea_clarifier",
		Phase:        models.PhaseIdeation,
		SystemPrompt: "team prompt",
		Scope:        scope.ForTeam("t1"),
		IsDefault:    true,
		CreatedBy:    "u1",
	})

	got, err := store.GetDefault(ctx, "idea_clarifier", models.PhaseIdeation)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if got == nil || got.SystemPrompt != "platform prompt" {
		t.Fatalf("expected the platform default, got %+v", got)
	}

	wrongPhase, err := store.GetDefault(ctx, "idea_clarifier", models.PhaseTesting)
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if wrongPhase != nil {
		t.Fatalf("expected nil for mismatched phase")
	}

	missing, err := store.GetDefault(ctx, "nonexistent", "")
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown feature type")
	}
}

func TestGetDefault_IgnoresInactive(t *testing.T) {
	store, _ := testStore(t)
	ctx := context.Background()

	row := mustCreate(t, store, CreateParams{
		FeatureType:  "prd_generator",
		SystemPrompt: "prompt",
		Scope:        scope.Platform(),
		IsDefault:    true,
		CreatedBy:    "system",
	})
	if err := store.Deactivate(ctx, row.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	got, err := store.GetDefault(ctx, "prd_generator", "")
	if err != nil {
		t.Fatalf("get default: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil after deactivation, got %+v", got)
	}
}

func TestListForPhase_ExcludesInactiveAndOtherScopes(t *testing.T) {
	store, conn := testStore(t)
	ctx := context.Background()

	older := mustCreate(t, store, CreateParams{
		FeatureType:  "ux_flow",
		Phase:        models.PhaseDesign,
		SystemPrompt: "older",
		Scope:        scope.ForUser("u1"),
		CreatedBy:    "u1",
	})
	newer := mustCreate(t, store, CreateParams{
		FeatureType:  "ux_flow",
		Phase:        models.PhaseDesign,
		SystemPrompt: "newer",
		Scope:        scope.ForUser("u1"),
		CreatedBy:    "u1",
	})
	retired := mustCreate(t, store, CreateParams{
		FeatureType:  "ux_flow",
		Phase:        models.PhaseDesign,
		SystemPrompt: "retired",
		Scope:        scope.ForUser("u1"),
		CreatedBy:    "u1",
	})
	mustCreate(t, store, CreateParams{
		FeatureType:  "ux_flow",
		Phase:        models.PhaseDesign,
		SystemPrompt: "other user",
		Scope:        scope.ForUser("u2"),
		CreatedBy:    "u2",
	})

	now := time.Now().UTC()
	for i, id := range []uint64{older.ID, newer.ID, retired.ID} {
		at := now.Add(time.Duration(i-3) * time.Hour)
		if err := conn.Model(&models.PromptTemplate{}).Where("id = ?", id).Update("created_at", at).Error; err != nil {
			t.Fatalf("set created_at: %v", err)
		}
	}
	if err := store.Deactivate(ctx, retired.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	rows, err := store.ListForPhase(ctx, models.PhaseDesign, scope.ForUser("u1"))
	if err != nil {
		t.Fatalf("list for phase: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].SystemPrompt != "newer" || rows[1].SystemPrompt != "older" {
		t.Fatalf("expected newest-first order, got %q then %q", rows[0].SystemPrompt, rows[1].SystemPrompt)
	}
}

func TestSetDefault_ClearsPriorDefault(t *testing.T) {
	store, conn := testStore(t)
	ctx := context.Background()

	first := mustCreate(t, store, CreateParams{
		FeatureType:  "test_cases",
		SystemPrompt: "first",
		Scope:        scope.Platform(),
		IsDefault:    true,
		CreatedBy:    "system",
	})
	second := mustCreate(t, store, CreateParams{
		FeatureType:  "test_cases",
		SystemPrompt: "second",
		Scope:        scope.Platform(),
		CreatedBy:    "system",
	})

	if err := store.SetDefault(ctx, second.ID); err != nil {
		t.Fatalf("set default: %v", err)
	}

	var count int64
	if err := conn.Model(&models.PromptTemplate{}).
		Where("feature_type = ? AND scope_type = ? AND is_default = ?", "test_cases", "platform", true).
		Count(&count).Error; err != nil {
		t.Fatalf("count defaults: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one default, got %d", count)
	}

	var reloaded models.PromptTemplate
	if err := conn.First(&reloaded, first.ID).Error; err != nil {
		t.Fatalf("load first: %v", err)
	}
	if reloaded.IsDefault {
		t.Fatalf("expected prior default to be cleared")
	}

	if err := store.SetDefault(ctx, 9999); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
