package domain

import "time"

type UsageKind string

const (
	UsageGenerate UsageKind = "generate"
	UsageRefine   UsageKind = "refine"
)

// UsageRecord is an append-only ledger entry for a charged generation.
type UsageRecord struct {
	ID             string    `json:"id"`
	AccountID      string    `json:"account_id"`
	ToolKey        string    `json:"tool"`
	Kind           UsageKind `json:"kind"`
	CreditsCharged int64     `json:"credits_charged"`
	Country        string    `json:"country,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// UsageStats aggregates the ledger across all accounts.
type UsageStats struct {
	TotalUsage           int64 `json:"total_usage"`
	TotalSessions        int64 `json:"total_sessions"`
	AvgCreditsPerSession int64 `json:"avg_credits_per_session"`
	ActiveAccounts       int64 `json:"active_accounts"`
}

// GuestQuotaRecord counts trial attempts for one guest scope and tool.
type GuestQuotaRecord struct {
	Scope        string `json:"scope"`
	ToolKey      string `json:"tool"`
	AttemptsUsed int    `json:"attempts_used"`
}
