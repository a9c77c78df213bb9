package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/apper-apps/tekxora-tools-chip/internal/account"
	"github.com/apper-apps/tekxora-tools-chip/internal/adapter/repo"
	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra"
	"github.com/apper-apps/tekxora-tools-chip/internal/infra/credentials"
	"github.com/apper-apps/tekxora-tools-chip/internal/ledger"
	"github.com/apper-apps/tekxora-tools-chip/internal/middleware"
)

type backend struct {
	accounts *account.Accounts
	ledger   *ledger.Ledger
	creds    *credentials.Store
	close    func()
}

type opener func(ctx context.Context, cmd *cli.Command) (*backend, error)

var errNoCredentialStore = errors.New("provider keys need the postgres store")

func accountFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "account",
		Usage:    "Account ID (UUID)",
		Required: true,
	}
}

func openPostgres(ctx context.Context, cmd *cli.Command) (*backend, error) {
	dsn := strings.TrimSpace(cmd.String("database-url"))
	if dsn == "" {
		return nil, errors.New("DATABASE_URL is required")
	}
	pool, err := infra.NewDBPool(ctx, &infra.Config{DatabaseURL: dsn})
	if err != nil {
		return nil, err
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "credits").Logger()
	runner := infra.NewSQLRunner(pool, logger)
	return &backend{
		accounts: account.New(repo.NewAccountRepository(runner)),
		ledger:   ledger.New(repo.NewLedgerRepository(runner)),
		creds:    credentials.NewStore(runner),
		close:    pool.Close,
	}, nil
}

func rootCommand(open opener) *cli.Command {
	withBackend := func(fn func(ctx context.Context, cmd *cli.Command, b *backend) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			b, err := open(ctx, cmd)
			if err != nil {
				return err
			}
			defer b.close()
			return fn(ctx, cmd, b)
		}
	}

	return &cli.Command{
		Name:            "credits",
		Usage:           "Manage accounts and credit balances",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Postgres connection string",
				Sources: cli.EnvVars("DATABASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Open an account funded with its plan's signup credits",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Usage: "Account email", Required: true},
					&cli.StringFlag{Name: "plan", Usage: "basic, pro or enterprise", Value: string(domain.PlanBasic)},
					&cli.BoolFlag{Name: "admin", Usage: "Grant admin access"},
				},
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					plan, err := domain.ParsePlan(cmd.String("plan"))
					if err != nil {
						return fmt.Errorf("%w: %q", err, cmd.String("plan"))
					}
					acct, err := b.accounts.Create(ctx, cmd.String("email"), plan, cmd.Bool("admin"))
					if err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "created %s %s plan=%s credits=%d admin=%t\n", acct.ID, acct.Email, acct.Plan, acct.Credits, acct.IsAdmin)
					return nil
				}),
			},
			{
				Name:  "grant",
				Usage: "Add credits to an account by amount or by plan",
				Flags: []cli.Flag{
					accountFlag(),
					&cli.Int64Flag{Name: "amount", Usage: "Credits to add"},
					&cli.StringFlag{Name: "plan", Usage: "Add the plan's credits (basic=300, pro=500, enterprise=1000)"},
				},
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					amount, err := grantAmount(cmd.Int64("amount"), cmd.String("plan"))
					if err != nil {
						return err
					}
					balance, err := b.accounts.Grant(ctx, cmd.String("account"), amount)
					if err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "granted %d credits to %s, balance=%d\n", amount, cmd.String("account"), balance)
					return nil
				}),
			},
			{
				Name:  "balance",
				Usage: "Show an account's credit balance",
				Flags: []cli.Flag{accountFlag()},
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					balance, err := b.accounts.Balance(ctx, cmd.String("account"))
					if err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "%d\n", balance)
					return nil
				}),
			},
			{
				Name:  "history",
				Usage: "List an account's usage records, newest first",
				Flags: []cli.Flag{
					accountFlag(),
					&cli.IntFlag{Name: "limit", Usage: "Maximum records", Value: ledger.DefaultHistoryLimit},
				},
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					records, err := b.ledger.History(ctx, cmd.String("account"), cmd.Int("limit"))
					if err != nil {
						return err
					}
					if len(records) == 0 {
						fmt.Fprintln(out(cmd), "No usage recorded.")
						return nil
					}
					for _, rec := range records {
						fmt.Fprintf(out(cmd), "%s  %-8s %-8s %4d  %s\n",
							rec.CreatedAt.Format(time.RFC3339), rec.ToolKey, rec.Kind, rec.CreditsCharged, rec.Country)
					}
					return nil
				}),
			},
			{
				Name:  "stats",
				Usage: "Show usage totals across all accounts",
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					stats, err := b.ledger.Stats(ctx)
					if err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "total_usage=%d total_sessions=%d avg_credits_per_session=%d active_accounts=%d\n",
						stats.TotalUsage, stats.TotalSessions, stats.AvgCreditsPerSession, stats.ActiveAccounts)
					return nil
				}),
			},
			{
				Name:  "token",
				Usage: "Issue an API token for an account",
				Flags: []cli.Flag{
					accountFlag(),
					&cli.StringFlag{Name: "secret", Usage: "HS256 signing secret", Sources: cli.EnvVars("JWT_SECRET")},
					&cli.StringFlag{Name: "issuer", Usage: "Token issuer", Value: "tekxora-tools", Sources: cli.EnvVars("JWT_ISSUER")},
					&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: 24 * time.Hour},
				},
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					secret := cmd.String("secret")
					if secret == "" {
						return errors.New("JWT_SECRET is required")
					}
					acct, err := b.accounts.Get(ctx, cmd.String("account"))
					if err != nil {
						return fmt.Errorf("load account: %w", err)
					}
					token, err := middleware.IssueToken(secret, cmd.String("issuer"), acct.ID, cmd.Duration("ttl"))
					if err != nil {
						return err
					}
					fmt.Fprintln(out(cmd), token)
					return nil
				}),
			},
			{
				Name:  "set-key",
				Usage: "Store a prompt provider API key",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "provider", Usage: "gemini or openai", Value: credentials.ProviderGemini},
					&cli.StringFlag{Name: "key", Usage: "API key (defaults to GEMINI_API_KEY or OPENAI_API_KEY)"},
				},
				Action: withBackend(func(ctx context.Context, cmd *cli.Command, b *backend) error {
					if b.creds == nil {
						return errNoCredentialStore
					}
					provider := strings.ToLower(strings.TrimSpace(cmd.String("provider")))
					key := strings.TrimSpace(cmd.String("key"))
					if key == "" {
						key = providerKeyFromEnv(provider)
					}
					if err := b.creds.SetKey(ctx, provider, key); err != nil {
						return err
					}
					fmt.Fprintf(out(cmd), "stored %s api key\n", provider)
					return nil
				}),
			},
		},
	}
}

func grantAmount(amount int64, plan string) (int64, error) {
	switch {
	case amount != 0 && plan != "":
		return 0, errors.New("use either --amount or --plan")
	case plan != "":
		p, err := domain.ParsePlan(plan)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", err, plan)
		}
		return p.Credits(), nil
	case amount <= 0:
		return 0, fmt.Errorf("%w: --amount must be positive", domain.ErrInvalidAmount)
	default:
		return amount, nil
	}
}

func providerKeyFromEnv(provider string) string {
	switch provider {
	case credentials.ProviderOpenAI:
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	default:
		return strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	}
}

func out(cmd *cli.Command) io.Writer {
	return cmd.Root().Writer
}
