package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/lembremed/lembremed/internal/auth"
	"github.com/lembremed/lembremed/internal/config"
	"github.com/lembremed/lembremed/internal/providers/gemini"
	"github.com/lembremed/lembremed/internal/service/chat"
	"github.com/lembremed/lembremed/internal/service/memory"
	"github.com/lembremed/lembremed/internal/storage/sqlite"
	"github.com/lembremed/lembremed/internal/transport/cli"
	"github.com/lembremed/lembremed/internal/transport/telegram"
	"github.com/lembremed/lembremed/pkg/cache"
	"github.com/lembremed/lembremed/pkg/log"
	"github.com/lembremed/lembremed/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	geminiCfg := config.NewGeminiConfig(ctx)

	// 2. Storage
	db, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	services = append(services, srv.NewCleanup(db.Close))

	docs := sqlite.NewDocuments(db)
	kv := sqlite.NewKV(db)

	// 3. Backend provider
	client := gemini.NewClient(geminiCfg)

	// 4. Identity and per-user state
	authn := auth.NewLocal(appCfg.UserID)
	mem := memory.NewStore(kv, authn)
	prefs := memory.NewPrefs(kv, authn)

	// 5. Assistant pipeline
	composer := chat.NewComposer(
		client,
		docs,
		kv,
		authn,
		mem,
		prefs,
		cache.New(cache.DefaultTTL),
	)

	// 6. Transports
	transports, err := initTransports(ctx, appCfg, composer, client)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize transports")
	}
	services = append(services, transports...)

	return services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (*sql.DB, error) {
	return sqlite.NewDB(ctx, cfg.GetDatabasePath())
}

func initTransports(ctx context.Context, cfg *config.AppConfig, composer *chat.Composer, client *gemini.Client) ([]srv.Service, error) {
	var services []srv.Service

	if cfg.EnableTelegram {
		tgCfg := config.NewTelegramConfig(ctx)
		bot, err := telegram.NewBot(ctx, tgCfg, composer, client)
		if err != nil {
			return nil, err
		}
		services = append(services, bot)
	}

	if cfg.EnableCLI {
		repl, err := cli.NewReadLine(composer, cfg)
		if err != nil {
			return nil, err
		}
		services = append(services, repl)
	}

	return services, nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
