// Package app boots the configuration service: it loads configuration,
// prepares the database, and runs the HTTP server until the context ends.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/vudara/aiconfig/internal/catalog"
	"github.com/vudara/aiconfig/internal/config"
	"github.com/vudara/aiconfig/internal/credstore"
	"github.com/vudara/aiconfig/internal/db"
	adminapi "github.com/vudara/aiconfig/internal/http/api/admin"
	"github.com/vudara/aiconfig/internal/http/api/front"
	"github.com/vudara/aiconfig/internal/ledger"
	"github.com/vudara/aiconfig/internal/promptstore"
	"github.com/vudara/aiconfig/internal/resolver"
	"github.com/vudara/aiconfig/internal/secretbox"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Migrate opens the database and runs migrations without starting the
// server.
func Migrate(ctx context.Context, cfg config.AppConfig) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)
	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	conn, err := db.Open(dsn)
	if err != nil {
		return err
	}
	return db.Migrate(conn)
}

// RunServer boots the configuration service and blocks until the context
// is cancelled or the server fails.
func RunServer(ctx context.Context, cfg config.AppConfig, port int) error {
	configPath := config.ResolveConfigPath(cfg.ConfigPath)

	dsn, err := config.LoadDatabaseDSN(configPath)
	if err != nil {
		return err
	}
	keyHex, errKey := config.LoadEncryptionKey(configPath)
	if errKey != nil {
		return errKey
	}
	codec, errCodec := secretbox.NewFromHex(keyHex)
	if errCodec != nil {
		return fmt.Errorf("encryption key: %w", errCodec)
	}
	jwtConfig, errJWT := config.LoadJWTConfig(configPath)
	if errJWT != nil {
		return errJWT
	}

	conn, errOpen := db.Open(dsn)
	if errOpen != nil {
		return errOpen
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		return errMigrate
	}
	if errSeed := db.Seed(conn); errSeed != nil {
		return errSeed
	}
	if errAdmin := EnsureInitialAdmin(conn,
		os.Getenv(config.EnvAdminEmail),
		os.Getenv(config.EnvAdminPassword)); errAdmin != nil {
		return errAdmin
	}

	catalogStore := catalog.NewStore(conn)
	credentialStore := credstore.NewStore(conn, codec)
	templateStore := promptstore.NewStore(conn)
	usageLedger := ledger.New(conn)
	configResolver := resolver.New(templateStore, credentialStore, catalogStore)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	front.RegisterFrontRoutes(engine, configResolver, usageLedger)
	adminapi.RegisterAdminRoutes(engine, adminapi.Dependencies{
		DB:          conn,
		JWT:         jwtConfig,
		Catalog:     catalogStore,
		Credentials: credentialStore,
		Templates:   templateStore,
		Usage:       usageLedger,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("starting configuration service")
		if errServe := server.ListenAndServe(); errServe != nil && !errors.Is(errServe, http.ErrServerClosed) {
			errCh <- errServe
			return
		}
		errCh <- nil
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if errShutdown := server.Shutdown(shutdownCtx); errShutdown != nil {
			return errShutdown
		}
		return <-errCh
	case errServe := <-errCh:
		return errServe
	}
}
