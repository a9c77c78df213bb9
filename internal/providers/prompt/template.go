package prompt

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/apper-apps/tekxora-tools-chip/internal/domain"
)

// TemplateGenerator builds prompts locally from fixed markdown templates.
type TemplateGenerator struct {
	pick CostPicker
}

func NewTemplateGenerator(pick CostPicker) *TemplateGenerator {
	return &TemplateGenerator{pick: costPicker(pick)}
}

func (g *TemplateGenerator) Generate(ctx context.Context, tool domain.ToolDescriptor, in domain.GeneratorInput) (*domain.GeneratorOutput, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := &domain.GeneratorOutput{
		CreditsCharged: g.pick(tool.Cost),
		Provider:       templateProviderName,
		Suggestions:    []string{},
	}
	switch {
	case in.IsRefinement():
		out.PromptText = refinePrompt(in.PriorPrompt, in.Selected)
		out.Suggestions = remainingSuggestions(tool.Key, in.Selected)
	case tool.Key == domain.ToolGame:
		out.PromptText = gamePrompt(in.Fields)
		out.Suggestions = suggestionsFor(tool.Key)
	case tool.Key == domain.ToolWebsite:
		out.PromptText = websitePrompt(in.Fields)
	default:
		out.PromptText = genericPrompt(tool, in.Fields)
	}
	return out, nil
}

var gameSuggestions = []string{
	"Add online multiplayer over WebSockets",
	"Ship a level editor for player-made content",
	"Introduce weapon and upgrade trees",
	"Let players share high scores on social networks",
	"Play animated cutscenes between levels",
	"Track achievements with unlockable rewards",
	"Offer extra modes such as time attack and survival",
	"Allow custom player skins and characters",
}

func suggestionsFor(toolKey string) []string {
	if toolKey != domain.ToolGame {
		return []string{}
	}
	out := make([]string, len(gameSuggestions))
	copy(out, gameSuggestions)
	return out
}

func remainingSuggestions(toolKey string, selected []string) []string {
	taken := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		taken[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	out := []string{}
	for _, s := range suggestionsFor(toolKey) {
		if _, ok := taken[strings.ToLower(s)]; !ok {
			out = append(out, s)
		}
	}
	return out
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slug(s string) string {
	s = slugPattern.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "project"
	}
	return s
}

func title(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(strings.TrimSpace(s))
}

func bullets(sb *strings.Builder, items []string) {
	for _, item := range items {
		fmt.Fprintf(sb, "- %s\n", item)
	}
}

func gamePrompt(f domain.Fields) string {
	name := coalesce(f.Text("gameName"), "Untitled Game")
	dir := slug(name)
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "# Game Build Plan: %s\n\n", title(name))
	fmt.Fprintf(sb, "## Overview\n%s\n\n", f.Text("gameIdea"))
	sb.WriteString("## Materials\n")
	bullets(sb, []string{
		"HTML5 Canvas or WebGL rendering setup",
		"A JavaScript engine such as Phaser, Three.js or plain JS",
		"Sprites: player, enemy, collectible, background and UI elements",
		"Audio: background loop plus jump, collect and game-over effects",
		"A stylesheet for menus and the HUD",
	})
	sb.WriteString("\n## Folder Structure\n```\n")
	fmt.Fprintf(sb, "%s/\n", dir)
	sb.WriteString("├── index.html\n├── css/style.css\n├── js/\n│   ├── game.js\n│   ├── player.js\n│   ├── enemy.js\n│   └── utils.js\n├── assets/\n│   ├── images/\n│   └── sounds/\n└── README.md\n```\n\n")
	sb.WriteString("## Features\n")
	for i, feat := range []string{
		"Keyboard and touch movement",
		"Collision detection",
		"Score tracking and display",
		"Health and lives",
		"Level progression",
		"Sound effects and music",
		"Game over and restart flow",
		"High scores in local storage",
		"Responsive layout for mobile",
		"Particle effects",
	} {
		fmt.Fprintf(sb, "%d. %s\n", i+1, feat)
	}
	sb.WriteString("\n## Technical Notes\n")
	bullets(sb, []string{
		"Drive the game loop with requestAnimationFrame and target 60 FPS",
		"Keep entities in small object-oriented modules",
		"Make the game installable as a progressive web app",
	})
	sb.WriteString("\n## Mechanics\n")
	bullets(sb, []string{
		"The player spawns at a fixed start point",
		"Enemies patrol or chase the player",
		"Collectibles raise the score and may grant power-ups",
		"Difficulty grows level by level with periodic boss fights",
	})
	return strings.TrimSpace(sb.String())
}

func websitePrompt(f domain.Fields) string {
	name := coalesce(f.Text("websiteName"), "Untitled Website")
	stack := f.Text("techStack")
	if strings.EqualFold(stack, "Other") {
		stack = coalesce(f.Text("customTech"), stack)
	}
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "# Website Development Plan: %s\n\n", title(name))
	fmt.Fprintf(sb, "## Overview\n%s\n\n", f.Text("websiteIdea"))
	sb.WriteString("## Technology\n")
	bullets(sb, []string{
		"Stack: " + stack,
		"Database: " + recommendedDatabase(stack),
		"Hosting: " + recommendedHosting(stack),
	})
	sb.WriteString("\n## Pages\n")
	for _, page := range f.Items("pages") {
		fmt.Fprintf(sb, "- %s page\n", page)
	}
	sb.WriteString("\n## Features\n")
	bullets(sb, f.Items("features"))
	sb.WriteString("\n## Folder Structure\n```\n")
	fmt.Fprintf(sb, "%s/\n├── src/\n│   ├── pages/\n│   ├── components/\n│   └── styles/\n├── public/\n└── README.md\n```\n\n", slug(name))
	sb.WriteString("## Phases\n")
	for i, phase := range []string{
		"Setup: environment, repository and " + stack + " scaffold",
		"Data: schema, relations and models",
		"Backend: authentication, API endpoints and business rules",
		"Frontend: responsive pages and interactions",
		"Integration and testing: end-to-end flows, performance and security",
		"Deployment: domain, TLS, monitoring and backups",
	} {
		fmt.Fprintf(sb, "%d. %s\n", i+1, phase)
	}
	sb.WriteString("\n## Quality Bar\n")
	bullets(sb, []string{
		"Mobile-first layout that loads in under three seconds",
		"WCAG 2.1 accessibility",
		"Input validation with XSS and CSRF protection",
		"SEO metadata, sitemap and robots.txt",
	})
	if extra := f.Text("additionalRequirements"); extra != "" {
		fmt.Fprintf(sb, "\n## Additional Requirements\n%s\n", extra)
	}
	return strings.TrimSpace(sb.String())
}

func genericPrompt(tool domain.ToolDescriptor, f domain.Fields) string {
	sb := &strings.Builder{}
	fmt.Fprintf(sb, "# %s\n", coalesce(tool.Name, title(tool.Key)))
	for _, step := range tool.Steps {
		if step.Title != "" {
			fmt.Fprintf(sb, "\n## %s\n", step.Title)
		}
		for _, fd := range step.Fields {
			label := coalesce(fd.Label, fd.Name)
			if fd.Kind == domain.FieldList {
				if items := f.Items(fd.Name); len(items) > 0 {
					fmt.Fprintf(sb, "- %s: %s\n", label, strings.Join(items, ", "))
				}
				continue
			}
			if v := f.Text(fd.Name); v != "" {
				fmt.Fprintf(sb, "- %s: %s\n", label, v)
			}
		}
	}
	return strings.TrimSpace(sb.String())
}

// refinePrompt appends the selected enhancements to the prior text. The
// prior text itself is kept verbatim.
func refinePrompt(prior string, selected []string) string {
	sb := &strings.Builder{}
	sb.WriteString(strings.TrimRight(prior, "\n "))
	sb.WriteString("\n\n## Updated Features\n")
	bullets(sb, selected)
	sb.WriteString("\n## Implementation Notes\n")
	for _, s := range selected {
		fmt.Fprintf(sb, "- %s: plan extra development and testing time for this addition.\n", s)
	}
	return strings.TrimSpace(sb.String())
}

func recommendedDatabase(stack string) string {
	switch strings.ToLower(stack) {
	case "django":
		return "PostgreSQL"
	case "laravel", "wordpress":
		return "MySQL"
	case "next.js", "react", "vue.js", "angular":
		return "PostgreSQL or a hosted document store"
	default:
		return "PostgreSQL"
	}
}

func recommendedHosting(stack string) string {
	switch strings.ToLower(stack) {
	case "next.js", "react", "vue.js", "angular":
		return "Vercel or Netlify for the frontend with a managed API host"
	case "wordpress":
		return "Managed WordPress hosting"
	default:
		return "A container platform or VPS"
	}
}

var _ domain.Generator = (*TemplateGenerator)(nil)
