package content

// DefaultConfig is the document a reset restores: a minimal placeholder site,
// smaller than the first-boot seed, so a wiped instance is obviously blank.
func DefaultConfig() *Config {
	return &Config{
		Profile: Profile{
			Name:     "Your Name",
			Title:    "Your Title",
			Avatar:   "/uploads/avatar.png",
			Banner:   "/uploads/banner.png",
			Verified: false,
			Bio:      "Tell visitors about yourself.",
			Status:   "online",
		},
		Navigation: []NavigationItem{
			{Name: "home", Path: "/", Active: true},
			{Name: "projects", Path: "/projects", Active: false},
			{Name: "contact", Path: "/contact", Active: false},
		},
		SocialLinks: []SocialLink{
			{Name: "GitHub", Username: "@username", URL: "https://github.com/username", Icon: "github", Action: "redirect"},
		},
		Projects: Projects{
			Title:       "Projects",
			Description: "Things I have built.",
			Items:       []ProjectItem{},
		},
		QuickLinks: []QuickLink{},
		Contact: Contact{
			ButtonText:   "Get in touch",
			Title:        "Contact Me",
			SubmitButton: "Send",
			CancelButton: "Cancel",
			ContactURL:   "",
			FormFields: []FormField{
				{Type: "text", Label: "Name", Required: true},
				{Type: "email", Label: "Email", Required: true},
				{Type: "textarea", Label: "Message", Required: true},
			},
		},
		Webhooks: Webhooks{
			Discord: "YOUR_WEBHOOK_URL_HERE",
		},
		OwnerSettings: OwnerSettings{
			Email:         "owner@example.com",
			LoadingLetter: defaultLoadingLetter,
			LoadingText:   defaultLoadingText,
		},
	}
}
