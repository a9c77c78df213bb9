package domain

import "fmt"

const (
	ToolGame    = "game"
	ToolWebsite = "website"
)

// CostRange bounds the credits a single generation may charge, inclusive.
type CostRange struct {
	Min int64 `json:"min"`
	Max int64 `json:"max"`
}

func (c CostRange) Contains(v int64) bool {
	return v >= c.Min && v <= c.Max
}

func (c CostRange) Validate() error {
	if c.Min <= 0 || c.Max < c.Min {
		return fmt.Errorf("invalid cost range [%d,%d]", c.Min, c.Max)
	}
	return nil
}

type FieldKind string

const (
	FieldText FieldKind = "text"
	FieldList FieldKind = "list"
)

// Condition makes a field required only when another field of the same step
// holds the given text value.
type Condition struct {
	Field  string `json:"field"`
	Equals string `json:"equals"`
}

type FieldDescriptor struct {
	Name         string     `json:"name"`
	Label        string     `json:"label"`
	Kind         FieldKind  `json:"kind"`
	Required     bool       `json:"required"`
	RequiredWhen *Condition `json:"required_when,omitempty"`
	Options      []string   `json:"options,omitempty"`
}

type StepDescriptor struct {
	Title  string            `json:"title"`
	Fields []FieldDescriptor `json:"fields"`
}

// ToolDescriptor is immutable once loaded from the catalog.
type ToolDescriptor struct {
	Key             string           `json:"key"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Cost            CostRange        `json:"cost"`
	GuestTrialLimit int              `json:"guest_trial_limit"`
	Steps           []StepDescriptor `json:"steps"`
}

func (t ToolDescriptor) StepCount() int {
	return len(t.Steps)
}

// Field looks up a field declaration across all steps.
func (t ToolDescriptor) Field(name string) (FieldDescriptor, int, bool) {
	for i, step := range t.Steps {
		for _, f := range step.Fields {
			if f.Name == name {
				return f, i + 1, true
			}
		}
	}
	return FieldDescriptor{}, 0, false
}
