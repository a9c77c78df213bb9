package domain

import (
	"strings"
	"time"
)

// AccountPlan enumerates signup plans. Each plan grants a starting balance.
type AccountPlan string

const (
	PlanBasic      AccountPlan = "basic"
	PlanPro        AccountPlan = "pro"
	PlanEnterprise AccountPlan = "enterprise"
)

var planCredits = map[AccountPlan]int64{
	PlanBasic:      300,
	PlanPro:        500,
	PlanEnterprise: 1000,
}

// ParsePlan accepts plan names case-insensitively.
func ParsePlan(s string) (AccountPlan, error) {
	p := AccountPlan(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := planCredits[p]; !ok {
		return "", ErrUnsupportedPlan
	}
	return p, nil
}

// Credits returns the signup grant for the plan.
func (p AccountPlan) Credits() int64 {
	return planCredits[p]
}

// Account is an authenticated user with a credit balance. Credits never drop
// below zero.
type Account struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Plan      AccountPlan `json:"plan"`
	Credits   int64       `json:"credits"`
	IsAdmin   bool        `json:"is_admin"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}
