// Package wizard drives multi-step input collection for a tool. A step only
// advances once every required field it declares is non-empty.
package wizard

import (
	"fmt"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

// Wizard is not safe for concurrent use; callers serialize access per session.
type Wizard struct {
	tool    domain.ToolDescriptor
	current int
	fields  domain.Fields
}

// Snapshot is a read-only view for presentation.
type Snapshot struct {
	Tool      string        `json:"tool"`
	Step      int           `json:"step"`
	StepCount int           `json:"step_count"`
	StepTitle string        `json:"step_title"`
	IsLast    bool          `json:"is_last"`
	Fields    domain.Fields `json:"fields"`
}

func New(tool domain.ToolDescriptor) *Wizard {
	return &Wizard{tool: tool, current: 1, fields: domain.Fields{}}
}

// Clone returns an independent copy at the same step.
func (w *Wizard) Clone() *Wizard {
	return &Wizard{tool: w.tool, current: w.current, fields: w.fields.Clone()}
}

func (w *Wizard) Tool() domain.ToolDescriptor { return w.tool }

func (w *Wizard) Current() int { return w.current }

func (w *Wizard) StepCount() int { return w.tool.StepCount() }

// Fields returns a copy of the collected values.
func (w *Wizard) Fields() domain.Fields { return w.fields.Clone() }

// Set stores a value for a field declared by any step of the tool.
func (w *Wizard) Set(name string, value domain.FieldValue) error {
	desc, _, ok := w.tool.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}
	if desc.Kind == domain.FieldList && !value.IsList() {
		value = listFromText(value.Text)
	}
	w.fields[name] = value
	return nil
}

// SetAll applies every value or none of them.
func (w *Wizard) SetAll(values domain.Fields) error {
	for name := range values {
		if _, _, ok := w.tool.Field(name); !ok {
			return fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
		}
	}
	for name, v := range values {
		if err := w.Set(name, v); err != nil {
			return err
		}
	}
	return nil
}

// Advance validates the current step and moves forward, capped at the last
// step. On failure the wizard is left unchanged.
func (w *Wizard) Advance() error {
	if err := w.Validate(w.current); err != nil {
		return err
	}
	if w.current < w.StepCount() {
		w.current++
	}
	return nil
}

// Retreat moves back one step and never goes below the first.
func (w *Wizard) Retreat() {
	if w.current > 1 {
		w.current--
	}
}

// Reset clears all fields and returns to the first step.
func (w *Wizard) Reset() {
	w.current = 1
	w.fields = domain.Fields{}
}

// Validate checks a single step in isolation.
func (w *Wizard) Validate(step int) error {
	if step < 1 || step > w.StepCount() {
		return &domain.ValidationError{Step: step, Reason: fmt.Errorf("step %d out of range", step)}
	}
	missing := missingFields(w.tool.Steps[step-1], w.fields)
	if len(missing) > 0 {
		return &domain.ValidationError{Step: step, MissingFields: missing}
	}
	return nil
}

// Ready validates every step in order and reports the first failure.
func (w *Wizard) Ready() error {
	for step := 1; step <= w.StepCount(); step++ {
		if err := w.Validate(step); err != nil {
			return err
		}
	}
	return nil
}

func (w *Wizard) Snapshot() Snapshot {
	snap := Snapshot{
		Tool:      w.tool.Key,
		Step:      w.current,
		StepCount: w.StepCount(),
		IsLast:    w.current == w.StepCount(),
		Fields:    w.Fields(),
	}
	if w.current >= 1 && w.current <= len(w.tool.Steps) {
		snap.StepTitle = w.tool.Steps[w.current-1].Title
	}
	return snap
}

func missingFields(step domain.StepDescriptor, values domain.Fields) []string {
	var missing []string
	for _, f := range step.Fields {
		if !isRequired(f, values) {
			continue
		}
		if values[f.Name].IsEmpty() {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

func isRequired(f domain.FieldDescriptor, values domain.Fields) bool {
	if f.Required {
		return true
	}
	if f.RequiredWhen != nil {
		return values.Text(f.RequiredWhen.Field) == f.RequiredWhen.Equals
	}
	return false
}

func listFromText(s string) domain.FieldValue {
	if s == "" {
		return domain.ListValue()
	}
	return domain.ListValue(s)
}
