package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/apper-apps/tekxora-tools-chip/internal/account"
	"github.com/apper-apps/tekxora-tools-chip/internal/adapter/repo"
	"github.com/apper-apps/tekxora-tools-chip/internal/catalog"
	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/http/handlers"
	httpapi "github.com/apper-apps/tekxora-tools-chip/internal/http/httpapi"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra/credentials"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra/geoip"
	"github.com/apper-apps/tekxora-tools-chip/internal/ledger"
	"github.com/apper-apps/tekxora-tools-chip/internal/metering"
	"github.com/apper-apps/tekxora-tools-chip/internal/middleware"
	"github.com/apper-apps/tekxora-tools-chip/internal/providers/prompt"
	"github.com/apper-apps/tekxora-tools-chip/internal/quota"
	"github.com/apper-apps/tekxora-tools-chip/internal/session"
	"github.com/apper-apps/tekxora-tools-chip/internal/store/memory"
)

type stores struct {
	accounts domain.AccountStore
	ledger   domain.LedgerStore
	counters domain.CounterStore
	creds    *credentials.Store
	ping     func(ctx context.Context) error
	close    func()
}

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.close()

	cat, err := catalog.Load(cfg.ToolsConfigPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load tool catalog")
	}

	gen, closeGen, err := newGenerator(ctx, cfg, st.creds, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init prompt generator")
	}
	defer closeGen()

	var lookup middleware.CountryLookup
	resolver, err := geoip.Open(cfg.GeoIPDBPath, cfg.GeoIPOverrides)
	switch {
	case err != nil:
		logger.Warn().Err(err).Msg("geoip disabled")
	case resolver != nil:
		lookup = resolver.CountryCode
		defer resolver.Close()
	}

	q := quota.NewTracker(st.counters)
	accts := account.New(st.accounts)
	led := ledger.New(st.ledger)
	guard := metering.NewGuard(q, accts)
	coord := metering.NewCoordinator(guard, gen, q, accts, led, metering.Options{
		Timeout: cfg.GenerationTimeout,
		Logger:  logger.With().Str("component", "metering").Logger(),
	})

	sessions := session.NewStore(cfg.SessionTTL)

	app := &handlers.App{
		Catalog:     cat,
		Sessions:    sessions,
		Guard:       guard,
		Coordinator: coord,
		Refiner:     metering.NewRefiner(coord),
		Accounts:    accts,
		Ledger:      led,
		Runtime: handlers.Runtime{
			Store:    cfg.StoreDriver,
			Provider: cfg.PromptProvider,
			Ping:     st.ping,
		},
		Logger: logger,
	}
	router := httpapi.NewRouter(app, httpapi.Options{
		JWTSecret:       cfg.JWTSecret,
		JWTIssuer:       cfg.JWTIssuer,
		GuestCookieName: cfg.GuestCookieName,
		SecureCookies:   !cfg.IsDevelopment(),
		AllowedOrigins:  cfg.CORSAllowedOrigins,
		DefaultLocale:   cfg.DefaultLocale,
		CountryLookup:   lookup,
		RateLimitPerMin: cfg.RateLimitPerMin,
		Logger:          logger,
	})

	server := infra.NewHTTPServer(cfg, router, logger)
	server.Go(func(ctx context.Context) {
		sessions.Run(ctx, cfg.SessionTTL/2, func(removed int) {
			logger.Debug().Int("removed", removed).Int("active", sessions.Len()).Msg("sessions swept")
		})
	})

	logger.Info().
		Str("store", cfg.StoreDriver).
		Str("provider", cfg.PromptProvider).
		Int("tools", len(cat.List())).
		Msgf("API starting on :%s", cfg.Port)
	if err := server.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("http server failed")
	}
}

func openStores(ctx context.Context, cfg *infra.Config, logger zerolog.Logger) (*stores, error) {
	if cfg.StoreDriver == infra.StoreDriverMemory {
		mem := memory.New()
		logger.Warn().Msg("using in-memory store, data is lost on restart")
		return &stores{accounts: mem, ledger: mem, counters: mem, close: func() {}}, nil
	}

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	runner := infra.NewSQLRunner(pool, logger.With().Str("component", "sql").Logger())
	return &stores{
		accounts: repo.NewAccountRepository(runner),
		ledger:   repo.NewLedgerRepository(runner),
		counters: repo.NewGuestQuotaRepository(runner),
		creds:    credentials.NewStore(runner),
		ping:     pool.Ping,
		close:    pool.Close,
	}, nil
}

// newGenerator builds the configured generator. LLM generators fall back to
// the template generator when the upstream call fails.
func newGenerator(ctx context.Context, cfg *infra.Config, creds *credentials.Store, logger zerolog.Logger) (domain.Generator, func(), error) {
	template := prompt.NewTemplateGenerator(prompt.RandomCost)
	noop := func() {}
	genLog := logger.With().Str("provider", cfg.PromptProvider).Logger()
	onFallback := func(reason string, err error) {
		genLog.Warn().Err(err).Str("reason", reason).Msg("prompt generator fell back to template")
	}

	switch cfg.PromptProvider {
	case infra.PromptProviderOpenAI:
		key, err := creds.Resolve(ctx, credentials.ProviderOpenAI, cfg.OpenAIAPIKey)
		if err != nil {
			return nil, noop, err
		}
		gen, err := prompt.NewOpenAIGenerator(prompt.OpenAIOptions{
			APIKey:       key,
			Model:        cfg.OpenAIModel,
			BaseURL:      cfg.OpenAIBaseURL,
			Organization: cfg.OpenAIOrg,
			MaxRetries:   cfg.OpenAIMaxRetries,
			Fallback:     template,
			OnFallback:   onFallback,
			OnWarning: func(reason, detail string) {
				genLog.Warn().Str("reason", reason).Str("detail", detail).Msg("openai generator warning")
			},
		})
		if err != nil {
			return nil, noop, err
		}
		genLog.Info().Str("model", gen.Model()).Msg("openai generator ready")
		return gen, noop, nil
	case infra.PromptProviderGemini:
		key, err := creds.Resolve(ctx, credentials.ProviderGemini, cfg.GeminiAPIKey)
		if err != nil {
			return nil, noop, err
		}
		gen, err := prompt.NewGeminiGenerator(ctx, prompt.GeminiOptions{
			APIKey:     key,
			Model:      cfg.GeminiModel,
			Fallback:   template,
			OnFallback: onFallback,
		})
		if err != nil {
			return nil, noop, err
		}
		genLog.Info().Str("model", gen.Model()).Msg("gemini generator ready")
		return gen, func() { _ = gen.Close() }, nil
	default:
		return template, noop, nil
	}
}
