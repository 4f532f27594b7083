package analytics

import "context"

type Action string

const (
	ActionClick      Action = "click"
	ActionScroll     Action = "scroll"
	ActionView       Action = "view"
	ActionSubmit     Action = "submit"
	ActionDownload   Action = "download"
	ActionSignUp     Action = "sign_up"
	ActionAssigned   Action = "assigned"
	ActionConversion Action = "conversion"
)

type Category string

const (
	CategoryCTA         Category = "cta"
	CategoryEngagement  Category = "engagement"
	CategoryNavigation  Category = "navigation"
	CategoryConversion  Category = "conversion"
	CategoryFeature     Category = "feature"
	CategoryTestimonial Category = "testimonial"
	CategoryLogo        Category = "logo"
	CategoryABTest      Category = "ab_test"
)

// CTAType identifies which call-to-action button was pressed.
type CTAType string

const (
	CTATrial  CTAType = "trial"
	CTADemo   CTAType = "demo"
	CTADocs   CTAType = "docs"
	CTASignIn CTAType = "signin"
)

var validActions = map[Action]bool{
	ActionClick: true, ActionScroll: true, ActionView: true, ActionSubmit: true,
	ActionDownload: true, ActionSignUp: true, ActionAssigned: true, ActionConversion: true,
}

var validCategories = map[Category]bool{
	CategoryCTA: true, CategoryEngagement: true, CategoryNavigation: true, CategoryConversion: true,
	CategoryFeature: true, CategoryTestimonial: true, CategoryLogo: true, CategoryABTest: true,
}

var validCTATypes = map[CTAType]bool{
	CTATrial: true, CTADemo: true, CTADocs: true, CTASignIn: true,
}

func (a Action) Valid() bool   { return validActions[a] }
func (c Category) Valid() bool { return validCategories[c] }
func (t CTAType) Valid() bool  { return validCTATypes[t] }

// Event is a single analytics event. Label and Value are optional.
type Event struct {
	Action   Action
	Category Category
	Label    string
	Value    *float64
}

// Float returns a pointer to v, for Event.Value.
func Float(v float64) *float64 {
	return &v
}

// Command is the first argument of a tagging call.
type Command string

const (
	CommandConfig Command = "config"
	CommandEvent  Command = "event"
	CommandSet    Command = "set"
	CommandJS     Command = "js"
)

// Params carries the optional third argument of a tagging call.
type Params map[string]any

// Parameter keys understood by tagging backends.
const (
	ParamEventCategory = "event_category"
	ParamEventLabel    = "event_label"
	ParamValue         = "value"
	ParamPagePath      = "page_path"
)

// Tagger is the outbound tagging capability, shaped like gtag(command, target, params).
// For CommandEvent the target is the action name; for CommandConfig it is the
// measurement id.
type Tagger interface {
	Tag(ctx context.Context, cmd Command, target string, params Params) error
}

// TaggerFunc adapts a function to the Tagger interface.
type TaggerFunc func(ctx context.Context, cmd Command, target string, params Params) error

func (f TaggerFunc) Tag(ctx context.Context, cmd Command, target string, params Params) error {
	return f(ctx, cmd, target, params)
}
