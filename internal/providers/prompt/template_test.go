package prompt

import (
	"context"
	"strings"
	"testing"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

func refinementInput() domain.GeneratorInput {
	return domain.GeneratorInput{
		PriorPrompt: "# Old plan\n\n## Features\n1. Jumping",
		Selected:    []string{"Boss fights", "Co-op mode"},
	}
}

var testWebsiteTool = domain.ToolDescriptor{
	Key:  domain.ToolWebsite,
	Name: "Website Prompt Generator",
	Cost: domain.CostRange{Min: 40, Max: 60},
}

func TestTemplateGameIncludesFieldsAndSuggestions(t *testing.T) {
	gen := NewTemplateGenerator(FixedCost(47))
	out, err := gen.Generate(context.Background(), testGameTool, gameInput())
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(out.PromptText, "# Game Build Plan: Space Runner") {
		t.Fatalf("unexpected heading: %q", strings.SplitN(out.PromptText, "\n", 2)[0])
	}
	if !strings.Contains(out.PromptText, "space-runner/") {
		t.Fatal("folder structure should use the slugged name")
	}
	if len(out.Suggestions) != len(gameSuggestions) {
		t.Fatalf("Suggestions = %d, want %d", len(out.Suggestions), len(gameSuggestions))
	}
	out.Suggestions[0] = "mutated"
	if gameSuggestions[0] == "mutated" {
		t.Fatal("suggestions must be copied")
	}
	if out.CreditsCharged != 47 || out.Provider != templateProviderName {
		t.Fatalf("unexpected output %+v", out)
	}
}

func TestTemplateWebsiteUsesCustomTech(t *testing.T) {
	gen := NewTemplateGenerator(nil)
	in := domain.GeneratorInput{Fields: domain.Fields{
		"websiteName":            domain.TextValue("Bakery"),
		"websiteIdea":            domain.TextValue("Online orders"),
		"techStack":              domain.TextValue("Other"),
		"customTech":             domain.TextValue("SvelteKit"),
		"pages":                  domain.ListValue("Home", "Menu"),
		"features":               domain.ListValue("Cart"),
		"additionalRequirements": domain.TextValue("Dark mode"),
	}}
	out, err := gen.Generate(context.Background(), testWebsiteTool, in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	for _, want := range []string{"Stack: SvelteKit", "- Home page", "- Menu page", "- Cart", "## Additional Requirements\nDark mode"} {
		if !strings.Contains(out.PromptText, want) {
			t.Fatalf("prompt missing %q:\n%s", want, out.PromptText)
		}
	}
	if len(out.Suggestions) != 0 {
		t.Fatalf("website prompts carry no suggestions, got %v", out.Suggestions)
	}
	if !testWebsiteTool.Cost.Contains(out.CreditsCharged) {
		t.Fatalf("cost %d outside range", out.CreditsCharged)
	}
}

func TestTemplateRefinementKeepsPriorText(t *testing.T) {
	gen := NewTemplateGenerator(FixedCost(40))
	in := refinementInput()
	in.Selected = []string{gameSuggestions[1]}
	out, err := gen.Generate(context.Background(), testGameTool, in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if !strings.HasPrefix(out.PromptText, in.PriorPrompt) {
		t.Fatal("refined prompt must start with the prior text")
	}
	if !strings.Contains(out.PromptText, "## Updated Features\n- "+gameSuggestions[1]) {
		t.Fatalf("refined prompt missing selection:\n%s", out.PromptText)
	}
	for _, s := range out.Suggestions {
		if s == gameSuggestions[1] {
			t.Fatal("selected suggestion should not be offered again")
		}
	}
	if len(out.Suggestions) != len(gameSuggestions)-1 {
		t.Fatalf("Suggestions = %d, want %d", len(out.Suggestions), len(gameSuggestions)-1)
	}
}

func TestTemplateGenericTool(t *testing.T) {
	tool := domain.ToolDescriptor{
		Key:  "email",
		Name: "Email Draft",
		Cost: domain.CostRange{Min: 5, Max: 5},
		Steps: []domain.StepDescriptor{{
			Title: "Basics",
			Fields: []domain.FieldDescriptor{
				{Name: "subject", Label: "Subject", Kind: domain.FieldText},
				{Name: "points", Label: "Points", Kind: domain.FieldList},
			},
		}},
	}
	in := domain.GeneratorInput{Fields: domain.Fields{
		"subject": domain.TextValue("Launch"),
		"points":  domain.ListValue("date", "price"),
	}}
	out, err := NewTemplateGenerator(nil).Generate(context.Background(), tool, in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	want := "# Email Draft\n\n## Basics\n- Subject: Launch\n- Points: date, price"
	if out.PromptText != want {
		t.Fatalf("PromptText = %q, want %q", out.PromptText, want)
	}
	if out.CreditsCharged != 5 {
		t.Fatalf("CreditsCharged = %d, want 5", out.CreditsCharged)
	}
}

func TestFixedCostClamps(t *testing.T) {
	r := domain.CostRange{Min: 40, Max: 60}
	if got := FixedCost(10)(r); got != 40 {
		t.Fatalf("FixedCost(10) = %d, want 40", got)
	}
	if got := FixedCost(90)(r); got != 60 {
		t.Fatalf("FixedCost(90) = %d, want 60", got)
	}
	for i := 0; i < 50; i++ {
		if got := RandomCost(r); !r.Contains(got) {
			t.Fatalf("RandomCost = %d outside range", got)
		}
	}
}
