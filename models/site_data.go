package models

// CurrentSchemaVersion is the schema version written by this code.
// Documents with a lower version are migrated on load.
const CurrentSchemaVersion = 2

// SiteData is the single root document holding all editable site content and configuration
type SiteData struct {
	SchemaVersion  int              `json:"schemaVersion"`
	Branding       Branding         `json:"branding"`
	Home           HomeContent      `json:"home"`
	About          AboutContent     `json:"about"`
	Contact        ContactContent   `json:"contact"`
	Equipment      EquipmentContent `json:"equipment"`
	Projects       ProjectsContent  `json:"projects"`
	Catalog        Catalog          `json:"catalog"`
	GitHubSettings GitHubSettings   `json:"githubSettings"`
	WhatsAppConfig WhatsAppConfig   `json:"whatsappConfig"`
	AISettings     AISettings       `json:"aiSettings"`
}

// Branding holds the site identity shown on every page
type Branding struct {
	SiteName      string `json:"siteName"`
	LogoURL       string `json:"logoUrl"`
	PrimaryColor  string `json:"primaryColor"`
	SiteNameColor string `json:"siteNameColor"`
	FooterText    string `json:"footerText"`
	FooterSubText string `json:"footerSubText"`
}

// Hero is the banner block at the top of a page
type Hero struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	ImageURL string `json:"imageUrl"`
	CTAText  string `json:"ctaText"`
	CTALink  string `json:"ctaLink"`
}

// Feature is a highlighted selling point (icon + text)
type Feature struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// HomeContent is the editable content of the home page
type HomeContent struct {
	Hero     Hero      `json:"hero"`
	Features []Feature `json:"features"`
}

// AboutContent is the editable content of the about page
type AboutContent struct {
	Title    string   `json:"title"`
	Body     string   `json:"body"`
	ImageURL string   `json:"imageUrl"`
	Values   []string `json:"values"`
}

// ContactContent is the editable content of the contact page
type ContactContent struct {
	Title   string `json:"title"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
	MapURL  string `json:"mapUrl"`
	Hours   string `json:"hours"`
}

// EquipmentContent is the editable header of the equipment catalog page
type EquipmentContent struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
}

// Project is a single entry of the project gallery
type Project struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Location    string   `json:"location"`
	ImageURL    string   `json:"imageUrl"`
	Images      []string `json:"images"`
}

// ProjectsContent is the editable content of the projects page
type ProjectsContent struct {
	Title    string    `json:"title"`
	Subtitle string    `json:"subtitle"`
	Items    []Project `json:"items"`
}

// GitHubSettings identifies the repository used as the remote document store
type GitHubSettings struct {
	Token  string `json:"token"`
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch"`
}

// Configured reports whether enough is set to address a repository
func (g GitHubSettings) Configured() bool {
	return g.Owner != "" && g.Repo != ""
}

// WhatsAppConfig configures the floating WhatsApp contact button
type WhatsAppConfig struct {
	Enabled        bool   `json:"enabled"`
	PhoneNumber    string `json:"phoneNumber"`
	DefaultMessage string `json:"defaultMessage"`
}

// AISettings configures the chat project builder
type AISettings struct {
	Enabled       bool   `json:"enabled"`
	AssistantName string `json:"assistantName"`
	SystemPrompt  string `json:"systemPrompt"`
	WelcomeText   string `json:"welcomeText"`
}

// Clone returns a deep copy of the document
func (d SiteData) Clone() SiteData {
	out := d
	out.Home.Features = cloneSlice(d.Home.Features)
	out.About.Values = cloneSlice(d.About.Values)
	out.Projects.Items = cloneSlice(d.Projects.Items)
	for i := range out.Projects.Items {
		out.Projects.Items[i].Images = cloneSlice(out.Projects.Items[i].Images)
	}
	out.Catalog = d.Catalog.Clone()
	return out
}

// Redacted returns a copy with credentials removed, safe to serve or commit
func (d SiteData) Redacted() SiteData {
	out := d.Clone()
	out.GitHubSettings.Token = ""
	return out
}

// cloneSlice copies s, keeping nil and empty slices distinct
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
