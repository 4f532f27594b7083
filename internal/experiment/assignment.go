// Package experiment buckets landing page sessions into A/B test arms.
//
// Every dimension is derived from a hash of the session id, so the same id
// always lands in the same arms and can be re-derived offline.
package experiment

import "fmt"

type Dimension string

const (
	DimensionHeroHeadline        Dimension = "hero_headline"
	DimensionCTAColor            Dimension = "cta_color"
	DimensionFeatureOrder        Dimension = "feature_order"
	DimensionSocialProofPosition Dimension = "social_proof_position"
)

// Dimensions lists every experiment dimension in display order.
var Dimensions = []Dimension{
	DimensionHeroHeadline,
	DimensionCTAColor,
	DimensionFeatureOrder,
	DimensionSocialProofPosition,
}

var arms = map[Dimension][]string{
	DimensionHeroHeadline:        {"A", "B"},
	DimensionCTAColor:            {"blue", "green", "purple"},
	DimensionFeatureOrder:        {"original", "reversed"},
	DimensionSocialProofPosition: {"before", "after"},
}

// Arms returns the arms of d, control first. Nil for unknown dimensions.
func (d Dimension) Arms() []string {
	a := arms[d]
	if a == nil {
		return nil
	}
	out := make([]string, len(a))
	copy(out, a)
	return out
}

func (d Dimension) Valid() bool {
	_, ok := arms[d]
	return ok
}

func ParseDimension(s string) (Dimension, error) {
	d := Dimension(s)
	if !d.Valid() {
		return "", fmt.Errorf("unknown dimension %q", s)
	}
	return d, nil
}

// Assignment is the set of arms a session has been bucketed into.
type Assignment struct {
	SessionID           string
	HeroHeadline        string
	CTAColor            string
	FeatureOrder        string
	SocialProofPosition string
}

// Arm returns the arm chosen for d.
func (a Assignment) Arm(d Dimension) string {
	switch d {
	case DimensionHeroHeadline:
		return a.HeroHeadline
	case DimensionCTAColor:
		return a.CTAColor
	case DimensionFeatureOrder:
		return a.FeatureOrder
	case DimensionSocialProofPosition:
		return a.SocialProofPosition
	}
	return ""
}

// Hash sums the code points of id. It is stable across processes but not
// collision resistant.
func Hash(id string) int {
	h := 0
	for _, r := range id {
		h += int(r)
	}
	return h
}

// Derive buckets id into every dimension.
func Derive(id string) Assignment {
	return FromHash(id, Hash(id))
}

// FromHash buckets using a precomputed hash.
func FromHash(id string, h int) Assignment {
	pick := func(d Dimension) string {
		a := arms[d]
		return a[h%len(a)]
	}
	return Assignment{
		SessionID:           id,
		HeroHeadline:        pick(DimensionHeroHeadline),
		CTAColor:            pick(DimensionCTAColor),
		FeatureOrder:        pick(DimensionFeatureOrder),
		SocialProofPosition: pick(DimensionSocialProofPosition),
	}
}
