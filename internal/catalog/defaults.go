package catalog

import "github.com/apper-apps/tekxora-tools-chip/internal/domain"

const (
	defaultMinCost    = 40
	defaultMaxCost    = 60
	defaultGuestTrial = 5
)

// Defaults returns the built-in game and website tools.
func Defaults() []domain.ToolDescriptor {
	return []domain.ToolDescriptor{
		{
			Key:             domain.ToolGame,
			Name:            "Game Prompt Generator",
			Description:     "Turns a game idea into a build plan with assets, structure and mechanics.",
			Cost:            domain.CostRange{Min: defaultMinCost, Max: defaultMaxCost},
			GuestTrialLimit: defaultGuestTrial,
			Steps: []domain.StepDescriptor{
				{
					Title: "Game idea",
					Fields: []domain.FieldDescriptor{
						{Name: "gameName", Label: "Game name", Kind: domain.FieldText, Required: true},
						{Name: "gameIdea", Label: "Game idea", Kind: domain.FieldText, Required: true},
					},
				},
			},
		},
		{
			Key:             domain.ToolWebsite,
			Name:            "Website Prompt Generator",
			Description:     "Collects a website brief in five steps and produces a development plan.",
			Cost:            domain.CostRange{Min: defaultMinCost, Max: defaultMaxCost},
			GuestTrialLimit: defaultGuestTrial,
			Steps: []domain.StepDescriptor{
				{
					Title: "Basics",
					Fields: []domain.FieldDescriptor{
						{Name: "websiteName", Label: "Website name", Kind: domain.FieldText, Required: true},
						{Name: "websiteIdea", Label: "Website idea", Kind: domain.FieldText, Required: true},
					},
				},
				{
					Title: "Technology",
					Fields: []domain.FieldDescriptor{
						{
							Name:     "techStack",
							Label:    "Tech stack",
							Kind:     domain.FieldText,
							Required: true,
							Options:  []string{"React", "Vue.js", "Angular", "Next.js", "WordPress", "Laravel", "Django", "Other"},
						},
						{
							Name:         "customTech",
							Label:        "Custom tech stack",
							Kind:         domain.FieldText,
							RequiredWhen: &domain.Condition{Field: "techStack", Equals: "Other"},
						},
					},
				},
				{
					Title: "Pages",
					Fields: []domain.FieldDescriptor{
						{
							Name:     "pages",
							Label:    "Pages",
							Kind:     domain.FieldList,
							Required: true,
							Options:  []string{"Home", "About", "Services", "Contact", "Blog", "Portfolio", "Shop", "Login"},
						},
					},
				},
				{
					Title: "Features",
					Fields: []domain.FieldDescriptor{
						{
							Name:     "features",
							Label:    "Features",
							Kind:     domain.FieldList,
							Required: true,
							Options:  []string{"User authentication", "Payment integration", "Search", "Contact form", "Admin dashboard", "Newsletter", "Analytics"},
						},
					},
				},
				{
					Title: "Extras",
					Fields: []domain.FieldDescriptor{
						{Name: "additionalRequirements", Label: "Additional requirements", Kind: domain.FieldText},
					},
				},
			},
		},
	}
}
