// File: internal/app/runtime.go
package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/iyunix/go-onyom/internal/config"
	"github.com/iyunix/go-onyom/internal/services"
	"github.com/iyunix/go-onyom/internal/services/completion"
	"github.com/iyunix/go-onyom/internal/services/identity"
	"github.com/iyunix/go-onyom/internal/services/session"
	"github.com/iyunix/go-onyom/internal/services/store"
)

// Runtime aggregates the process-wide adapters every client shares.
type Runtime struct {
	Config     *config.Config
	Logger     services.Logger
	DB         *gorm.DB
	Store      *store.GormStore
	Identity   *identity.LocalProvider
	Completion *completion.Bridge
	Clients    *Clients
}

func ProvideIdentityConfig(cfg *config.Config) identity.Config {
	ic := identity.DefaultConfig()
	ic.SecretKey = []byte(cfg.JWTSecretKey)
	ic.TokenTTL = cfg.TokenTTL
	ic.RequireVerification = cfg.RequireEmailVerification
	return ic
}

func ProvideCompletionConfig(cfg *config.Config) *completion.Config {
	cc := completion.DefaultConfig()
	cc.APIKey = cfg.OpenAIAPIKey
	cc.BaseURL = cfg.OpenAIBaseURL
	cc.Model = cfg.CompletionModel
	cc.HistoryWindow = cfg.CompletionHistory
	cc.Timeout = cfg.CompletionTimeout
	cc.RatePerMinute = cfg.CompletionRatePerMin
	cc.MaxTokens = cfg.CompletionMaxTokens
	cc.Temperature = cfg.CompletionTemperature
	return cc
}

func ProvideSessionConfig(cfg *config.Config) session.Config {
	return session.Config{IdentityTimeout: cfg.IdentityTimeout, ProfileTimeout: cfg.ProfileTimeout}
}

// NewRuntime wires the adapters over an opened, migrated database.
func NewRuntime(cfg *config.Config, logger services.Logger, db *gorm.DB) (*Runtime, error) {
	if cfg.JWTSecretKey == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		logger.Warn("JWT_SECRET_KEY not set, using an insecure development key")
		cfg.JWTSecretKey = "onyom-dev-secret"
	}

	gormStore := store.NewGormStore(db, logger)

	notifier := identity.NewRetryingNotifier(identity.NewLogNotifier(logger), identity.DefaultRetryConfig())
	provider, err := identity.NewLocalProvider(db, notifier, ProvideIdentityConfig(cfg), logger)
	if err != nil {
		return nil, fmt.Errorf("identity provider: %w", err)
	}

	completionCfg := ProvideCompletionConfig(cfg)
	completer, err := completion.NewProvider(completionCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("completion provider: %w", err)
	}
	bridge, err := completion.NewBridge(completer, completionCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("completion bridge: %w", err)
	}

	rt := &Runtime{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Store:      gormStore,
		Identity:   provider,
		Completion: bridge,
	}
	rt.Clients = NewClients(rt.NewClient, logger)
	return rt, nil
}

// NewClient builds a fresh, uninitialized client context.
func (r *Runtime) NewClient() *Client {
	sessions := session.NewStore(r.Identity, r.Store, ProvideSessionConfig(r.Config), r.Logger)
	return NewClient(sessions, r.Store, r.Completion, r.Config.StoreTimeout, r.Logger)
}
