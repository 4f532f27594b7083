// Package content holds the landing page copy and composes it for a
// session's experiment assignment.
package content

import "github.com/apilon/apilon-landing/internal/experiment"

type Headline struct {
	Line1 string
	Line2 string
	Lead  string
}

type Feature struct {
	Icon        string
	Title       string
	Description string
}

type Testimonial struct {
	Quote   string
	Author  string
	Role    string
	Company string
	Avatar  string // initials
}

type Metric struct {
	Value string
	Label string
}

var headlines = map[string]Headline{
	"A": {
		Line1: "Publish World-Class API Docs",
		Line2: "In Days, Not Weeks",
		Lead:  "Convert OpenAPI specs into beautiful, searchable documentation. 80% faster than traditional methods.",
	},
	"B": {
		Line1: "Your API Deserves Docs",
		Line2: "Developers Actually Read",
		Lead:  "Generate, version and publish reference docs straight from your OpenAPI spec. Ship docs with every release.",
	},
}

var features = []Feature{
	{Icon: "⚡", Title: "Instant Generation", Description: "Automatic documentation generation from OpenAPI specs and code comments."},
	{Icon: "🎨", Title: "Custom Branding", Description: "Beautiful, responsive documentation sites with custom branding."},
	{Icon: "🏷", Title: "Versioning", Description: "Automatic versioning and changelog generation with every release."},
	{Icon: "👥", Title: "Collaboration", Description: "Real-time collaboration with review workflows and team permissions."},
}

var testimonials = []Testimonial{
	{
		Quote:   "We replaced three internal doc tools with Apilon and cut our release checklist in half.",
		Author:  "Priya Raman",
		Role:    "Head of Platform",
		Company: "Ledgerline",
		Avatar:  "PR",
	},
	{
		Quote:   "Our partners stopped filing tickets about outdated endpoints the week we switched.",
		Author:  "Marcus Feld",
		Role:    "Developer Relations Lead",
		Company: "Shipwise",
		Avatar:  "MF",
	},
	{
		Quote:   "The OpenAPI import just worked. Docs were live before the sprint review.",
		Author:  "Ana Souza",
		Role:    "Staff Engineer",
		Company: "Cobalt Health",
		Avatar:  "AS",
	},
}

var metrics = []Metric{
	{Value: "1,000+", Label: "Teams"},
	{Value: "5x", Label: "Faster documentation"},
	{Value: "12M", Label: "API Endpoints documented"},
	{Value: "99.99%", Label: "Uptime"},
}

var logos = []string{"Ledgerline", "Shipwise", "Cobalt Health", "Northwind", "Parcelio", "Quanta"}

var trustBadges = []string{"Trusted by 1,000+ teams", "SOC 2 Type II Compliant", "5x faster documentation"}

// CTA button colours as CSS values.
var ctaColors = map[string]string{
	"blue":   "#2563eb",
	"green":  "#16a34a",
	"purple": "#7c3aed",
}

// Page is the landing page view model for one assignment.
type Page struct {
	Assignment        experiment.Assignment
	Headline          Headline
	CTAColor          string
	Features          []Feature
	Testimonials      []Testimonial
	Metrics           []Metric
	Logos             []string
	TrustBadges       []string
	SocialProofBefore bool
	Year              int
}

// Compose builds the page for a, applying every experiment dimension.
func Compose(a experiment.Assignment, year int) Page {
	h, ok := headlines[a.HeroHeadline]
	if !ok {
		h = headlines["A"]
	}
	color, ok := ctaColors[a.CTAColor]
	if !ok {
		color = ctaColors["blue"]
	}

	feats := make([]Feature, len(features))
	copy(feats, features)
	if a.FeatureOrder == "reversed" {
		for i, j := 0, len(feats)-1; i < j; i, j = i+1, j-1 {
			feats[i], feats[j] = feats[j], feats[i]
		}
	}

	return Page{
		Assignment:        a,
		Headline:          h,
		CTAColor:          color,
		Features:          feats,
		Testimonials:      testimonials,
		Metrics:           metrics,
		Logos:             logos,
		TrustBadges:       trustBadges,
		SocialProofBefore: a.SocialProofPosition != "after",
		Year:              year,
	}
}
