// Package content implements the site configuration document: a nested
// structure persisted across normalized SQLite tables, read back as a single
// document and written one section at a time.
package content

// Config is the full nested site configuration document.
type Config struct {
	Profile             Profile              `json:"profile"`
	Navigation          []NavigationItem     `json:"navigation"`
	SocialLinks         []SocialLink         `json:"socialLinks"`
	Projects            Projects             `json:"projects"`
	QuickLinks          []QuickLink          `json:"quickLinks"`
	Contact             Contact              `json:"contact"`
	Webhooks            Webhooks             `json:"webhooks"`
	OwnerSettings       OwnerSettings        `json:"ownerSettings"`
	Discover            *Discover            `json:"discover,omitempty"`
	PerformanceSettings *PerformanceSettings `json:"performanceSettings,omitempty"`
}

type Profile struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Title    string `json:"title"`
	Avatar   string `json:"avatar"`
	Banner   string `json:"banner"`
	Verified bool   `json:"verified"`
	Bio      string `json:"bio"`
	// Status is free text or an image URL.
	Status string `json:"status"`
}

type NavigationItem struct {
	ID     int    `json:"id,omitempty"`
	Name   string `json:"name"`
	Path   string `json:"path"`
	Active bool   `json:"active"`
}

type SocialLink struct {
	ID       int    `json:"id,omitempty"`
	Name     string `json:"name"`
	Username string `json:"username"`
	URL      string `json:"url"`
	Icon     string `json:"icon"`
	// Action is "view" or "copy".
	Action string `json:"action"`
}

type Projects struct {
	ID          int           `json:"id,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Items       []ProjectItem `json:"items"`
}

type ProjectItem struct {
	Name    string `json:"name"`
	Icon    string `json:"icon"`
	URL     string `json:"url"`
	Preview string `json:"preview,omitempty"`
}

type QuickLink struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type Contact struct {
	ButtonText   string      `json:"buttonText"`
	Title        string      `json:"title"`
	FormFields   []FormField `json:"formFields"`
	SubmitButton string      `json:"submitButton"`
	CancelButton string      `json:"cancelButton"`
	// ContactURL, when set, bypasses the form entirely.
	ContactURL string `json:"contactUrl,omitempty"`
}

type FormField struct {
	// Type is "text", "email" or "textarea".
	Type     string `json:"type"`
	Label    string `json:"label"`
	Required bool   `json:"required"`
}

type Webhooks struct {
	Discord string `json:"discord"`
}

type OwnerSettings struct {
	Email         string `json:"email"`
	LoadingLetter string `json:"loadingLetter"`
	LoadingText   string `json:"loadingText"`
}

type Discover struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Sections    []DiscoverSection `json:"sections"`
	Stats       *DiscoverStats    `json:"stats,omitempty"`
}

type DiscoverSection struct {
	ID          int            `json:"id,omitempty"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Items       []DiscoverItem `json:"items"`
}

type DiscoverItem struct {
	ID          int    `json:"id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
	URL         string `json:"url,omitempty"`
	Tag         string `json:"tag,omitempty"`
}

type DiscoverStats struct {
	ShowStats       bool         `json:"showStats"`
	ExperienceYears int          `json:"experienceYears"`
	CustomStats     []CustomStat `json:"customStats"`
}

type CustomStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type PerformanceSettings struct {
	ImageOptimization bool `json:"imageOptimization"`
	Analytics         bool `json:"analytics"`
}

const (
	defaultLoadingLetter = "H"
	defaultLoadingText   = "Loading..."
)
