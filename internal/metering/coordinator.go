package metering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apper-apps/tekxora-tools-chip/internal/account"
	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
	"github.com/apper-apps/tekxora-tools-chip/internal/ledger"
	"github.com/apper-apps/tekxora-tools-chip/internal/quota"
)

const DefaultGenerationTimeout = 60 * time.Second

var errEmptyOutput = errors.New("generator returned no prompt")

// Request asks for a first-pass generation from wizard fields.
type Request struct {
	Identity domain.Identity
	Tool     domain.ToolDescriptor
	Fields   domain.Fields
	Locale   string
	Country  string
}

type Options struct {
	// Timeout bounds a generator call. Zero uses DefaultGenerationTimeout.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Coordinator runs the guard, generator and settlement steps of a generation
// and allows one in-flight generation per session.
type Coordinator struct {
	guard     *Guard
	generator domain.Generator
	quota     *quota.Tracker
	accounts  *account.Accounts
	ledger    *ledger.Ledger
	logger    zerolog.Logger
	timeout   time.Duration
	now       func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewCoordinator(guard *Guard, gen domain.Generator, q *quota.Tracker, a *account.Accounts, l *ledger.Ledger, opts Options) *Coordinator {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultGenerationTimeout
	}
	return &Coordinator{
		guard:     guard,
		generator: gen,
		quota:     q,
		accounts:  a,
		ledger:    l,
		logger:    opts.Logger,
		timeout:   timeout,
		now:       time.Now,
		inFlight:  make(map[string]struct{}),
	}
}

type cycle struct {
	identity domain.Identity
	tool     domain.ToolDescriptor
	input    domain.GeneratorInput
	kind     domain.UsageKind
	parentID string
	country  string
}

// Generate checks eligibility, calls the generator and settles the charge.
// Denials and failures leave quota, balance and ledger untouched.
func (c *Coordinator) Generate(ctx context.Context, req Request) (*domain.GenerationResult, error) {
	return c.run(ctx, cycle{
		identity: req.Identity,
		tool:     req.Tool,
		input:    domain.GeneratorInput{Fields: req.Fields.Clone(), Locale: req.Locale},
		kind:     domain.UsageGenerate,
		country:  req.Country,
	})
}

// InFlight reports whether a generation is running for the identity's session.
func (c *Coordinator) InFlight(id domain.Identity) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inFlight[id.Key()]
	return busy
}

func (c *Coordinator) run(ctx context.Context, cy cycle) (*domain.GenerationResult, error) {
	key := cy.identity.Key()
	if !c.acquire(key) {
		return nil, domain.ErrGenerationInProgress
	}
	defer c.release(key)

	log := c.logger.With().
		Str("session", key).
		Str("tool", cy.tool.Key).
		Str("kind", string(cy.kind)).
		Logger()

	decision, err := c.guard.Check(ctx, cy.identity, cy.tool)
	if err != nil {
		return nil, fmt.Errorf("eligibility check: %w", err)
	}
	if !decision.Allowed {
		log.Debug().Err(decision.Reason).Int64("remaining", decision.Remaining).Msg("generation denied")
		return nil, decision.Reason
	}

	// Once dispatched, a generation runs to completion even if the caller goes away.
	detached := context.WithoutCancel(ctx)
	out, err := c.generate(detached, cy)
	if err != nil {
		log.Warn().Err(err).Msg("generator failed")
		return nil, fmt.Errorf("%w: %w", domain.ErrGenerationFailure, err)
	}

	if cy.identity.IsGuest() {
		attempts, err := c.quota.Consume(detached, cy.identity.GuestScope, cy.tool)
		if err != nil {
			log.Warn().Err(err).Msg("guest attempt not recorded, output discarded")
			return nil, err
		}
		log.Info().Int("attempts", attempts).Int64("credits", out.CreditsCharged).Msg("guest generation settled")
	} else {
		rec := c.ledger.NewRecord(cy.identity.AccountID, cy.tool.Key, cy.kind, out.CreditsCharged, cy.country)
		balance, err := c.accounts.Charge(detached, rec)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientCredits) {
				log.Info().Int64("credits", out.CreditsCharged).Int64("balance", balance).Msg("charge exceeds balance, output discarded")
				return nil, domain.ErrInsufficientCredits
			}
			return nil, fmt.Errorf("settle charge: %w", err)
		}
		log.Info().Int64("credits", out.CreditsCharged).Int64("balance", balance).Msg("generation settled")
	}

	suggestions := make([]string, len(out.Suggestions))
	copy(suggestions, out.Suggestions)
	return &domain.GenerationResult{
		ID:             uuid.NewString(),
		ToolKey:        cy.tool.Key,
		PromptText:     out.PromptText,
		Suggestions:    suggestions,
		CreditsCharged: out.CreditsCharged,
		ParentID:       cy.parentID,
		Provider:       out.Provider,
		CreatedAt:      c.now().UTC(),
	}, nil
}

func (c *Coordinator) generate(ctx context.Context, cy cycle) (*domain.GeneratorOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := c.generator.Generate(ctx, cy.tool, cy.input)
	if err != nil {
		return nil, err
	}
	if out == nil || strings.TrimSpace(out.PromptText) == "" {
		return nil, errEmptyOutput
	}
	if !cy.tool.Cost.Contains(out.CreditsCharged) {
		return nil, fmt.Errorf("cost %d outside [%d,%d]", out.CreditsCharged, cy.tool.Cost.Min, cy.tool.Cost.Max)
	}
	return out, nil
}

func (c *Coordinator) acquire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inFlight[key]; busy {
		return false
	}
	c.inFlight[key] = struct{}{}
	return true
}

func (c *Coordinator) release(key string) {
	c.mu.Lock()
	delete(c.inFlight, key)
	c.mu.Unlock()
}
