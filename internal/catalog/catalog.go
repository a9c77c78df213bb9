// Package catalog holds the tool descriptors offered by the service. Built-in
// tools can be overridden or extended from a YAML file.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

type Catalog struct {
	tools map[string]domain.ToolDescriptor
	order []string
}

type fileConfig struct {
	Tools []toolConfig `koanf:"tools"`
}

type toolConfig struct {
	Key             string       `koanf:"key"`
	Name            string       `koanf:"name"`
	Description     string       `koanf:"description"`
	Cost            costConfig   `koanf:"cost"`
	GuestTrialLimit int          `koanf:"guest-trial-limit"`
	Steps           []stepConfig `koanf:"steps"`
}

type costConfig struct {
	Min int64 `koanf:"min"`
	Max int64 `koanf:"max"`
}

type stepConfig struct {
	Title  string        `koanf:"title"`
	Fields []fieldConfig `koanf:"fields"`
}

type fieldConfig struct {
	Name         string           `koanf:"name"`
	Label        string           `koanf:"label"`
	Kind         string           `koanf:"kind"`
	Required     bool             `koanf:"required"`
	RequiredWhen *conditionConfig `koanf:"required-when"`
	Options      []string         `koanf:"options"`
}

type conditionConfig struct {
	Field  string `koanf:"field"`
	Equals string `koanf:"equals"`
}

// New builds a catalog from descriptors, validating each one.
func New(tools ...domain.ToolDescriptor) (*Catalog, error) {
	c := &Catalog{tools: make(map[string]domain.ToolDescriptor, len(tools))}
	for _, t := range tools {
		if err := c.put(t); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Load returns the built-in catalog merged with the tools declared in path.
// A tool in the file replaces the built-in tool with the same key. An empty
// or missing path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	c, err := New(Defaults()...)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(path) == "" {
		return c, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c, nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("catalog: load %s: %w", path, err)
	}
	var cfg fileConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("catalog: decode %s: %w", path, err)
	}
	for _, tc := range cfg.Tools {
		if err := c.put(tc.descriptor()); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the tool registered under key or domain.ErrUnknownTool.
func (c *Catalog) Get(key string) (domain.ToolDescriptor, error) {
	t, ok := c.tools[strings.ToLower(strings.TrimSpace(key))]
	if !ok {
		return domain.ToolDescriptor{}, fmt.Errorf("%w: %s", domain.ErrUnknownTool, key)
	}
	return t, nil
}

// List returns tools in registration order.
func (c *Catalog) List() []domain.ToolDescriptor {
	out := make([]domain.ToolDescriptor, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.tools[key])
	}
	return out
}

func (c *Catalog) put(t domain.ToolDescriptor) error {
	t.Key = strings.ToLower(strings.TrimSpace(t.Key))
	if err := validate(t); err != nil {
		return err
	}
	if _, exists := c.tools[t.Key]; !exists {
		c.order = append(c.order, t.Key)
	}
	c.tools[t.Key] = t
	return nil
}

func validate(t domain.ToolDescriptor) error {
	if t.Key == "" {
		return errors.New("catalog: tool key is required")
	}
	if err := t.Cost.Validate(); err != nil {
		return fmt.Errorf("catalog: tool %s: %w", t.Key, err)
	}
	if t.GuestTrialLimit < 0 {
		return fmt.Errorf("catalog: tool %s: negative guest trial limit", t.Key)
	}
	if len(t.Steps) == 0 {
		return fmt.Errorf("catalog: tool %s: at least one step is required", t.Key)
	}
	seen := map[string]struct{}{}
	for i, step := range t.Steps {
		local := map[string]struct{}{}
		for _, f := range step.Fields {
			if f.Name == "" {
				return fmt.Errorf("catalog: tool %s step %d: field name is required", t.Key, i+1)
			}
			if _, dup := seen[f.Name]; dup {
				return fmt.Errorf("catalog: tool %s: duplicate field %s", t.Key, f.Name)
			}
			seen[f.Name] = struct{}{}
			local[f.Name] = struct{}{}
			switch f.Kind {
			case domain.FieldText, domain.FieldList:
			default:
				return fmt.Errorf("catalog: tool %s: field %s has unknown kind %q", t.Key, f.Name, f.Kind)
			}
		}
		for _, f := range step.Fields {
			if f.RequiredWhen == nil {
				continue
			}
			if _, ok := local[f.RequiredWhen.Field]; !ok {
				return fmt.Errorf("catalog: tool %s: field %s depends on %s outside its step", t.Key, f.Name, f.RequiredWhen.Field)
			}
		}
	}
	return nil
}

func (tc toolConfig) descriptor() domain.ToolDescriptor {
	t := domain.ToolDescriptor{
		Key:             tc.Key,
		Name:            tc.Name,
		Description:     tc.Description,
		Cost:            domain.CostRange{Min: tc.Cost.Min, Max: tc.Cost.Max},
		GuestTrialLimit: tc.GuestTrialLimit,
	}
	for _, sc := range tc.Steps {
		step := domain.StepDescriptor{Title: sc.Title}
		for _, fc := range sc.Fields {
			kind := domain.FieldKind(strings.ToLower(fc.Kind))
			if kind == "" {
				kind = domain.FieldText
			}
			fd := domain.FieldDescriptor{
				Name:     fc.Name,
				Label:    fc.Label,
				Kind:     kind,
				Required: fc.Required,
				Options:  fc.Options,
			}
			if fc.RequiredWhen != nil {
				fd.RequiredWhen = &domain.Condition{Field: fc.RequiredWhen.Field, Equals: fc.RequiredWhen.Equals}
			}
			step.Fields = append(step.Fields, fd)
		}
		t.Steps = append(t.Steps, step)
	}
	return t
}
