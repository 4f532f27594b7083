package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/apilon/apilon-landing/internal/analytics"
	"github.com/apilon/apilon-landing/internal/experiment"
	"github.com/apilon/apilon-landing/internal/stats"
)

// ConversionPrefix marks a CTA click as a conversion: trial sign-ups.
var ConversionPrefix = string(analytics.CTATrial) + "_"

type dashboardData struct {
	Sessions         int
	ConversionPrefix string
	Results          []dimensionView
}

type dimensionView struct {
	Dimension         string
	Arms              []armView
	Confident         bool
	ConfidencePercent float64
	LeadingArm        int
	LeadingArmName    string
}

type armView struct {
	Index          int
	Name           string
	Sessions       int
	Conversions    int
	RatePercent    float64
	CILowerPercent float64
	CIUpperPercent float64
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// Handle logout
	if r.URL.Query().Get("logout") == "1" {
		http.SetCookie(w, &http.Cookie{
			Name:   tokenCookieName,
			Value:  "",
			Path:   "/dashboard",
			MaxAge: -1,
		})
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.Write([]byte("Logged out"))
		return
	}

	ctx := r.Context()

	results, err := s.analyzeAll(ctx)
	if err != nil {
		s.log.WithError(err).Error("failed to analyze experiments")
		http.Error(w, "Failed to load results", http.StatusInternalServerError)
		return
	}

	sessions, err := s.store.CountSessions(ctx)
	if err != nil {
		http.Error(w, "Failed to load sessions", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		Sessions:         sessions,
		ConversionPrefix: ConversionPrefix,
	}
	for _, res := range results {
		data.Results = append(data.Results, toDimensionView(res))
	}

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, "dashboard.html", data); err != nil {
		s.log.WithError(err).Error("failed to render dashboard")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

func (s *Server) handleDashboardAPI(w http.ResponseWriter, r *http.Request) {
	results, err := s.analyzeAll(r.Context())
	if err != nil {
		http.Error(w, "Failed to load results", http.StatusInternalServerError)
		return
	}

	type apiArm struct {
		Arm         string  `json:"arm"`
		Sessions    int     `json:"sessions"`
		Conversions int     `json:"conversions"`
		Rate        float64 `json:"rate"`
		CILower     float64 `json:"ci_lower"`
		CIUpper     float64 `json:"ci_upper"`
	}

	type apiSignificance struct {
		Confident       bool    `json:"confident"`
		ConfidenceLevel float64 `json:"confidence_level"`
		LeadingArm      string  `json:"leading_arm"`
	}

	type apiDimension struct {
		Dimension    string          `json:"dimension"`
		Arms         []apiArm        `json:"arms"`
		Significance apiSignificance `json:"significance"`
	}

	out := make([]apiDimension, len(results))
	for i, res := range results {
		arms := make([]apiArm, len(res.Arms))
		for j, a := range res.Arms {
			arms[j] = apiArm{
				Arm:         a.Name,
				Sessions:    a.Sessions,
				Conversions: a.Conversions,
				Rate:        a.Rate,
				CILower:     a.CILower,
				CIUpper:     a.CIUpper,
			}
		}
		out[i] = apiDimension{
			Dimension: string(res.Dimension),
			Arms:      arms,
			Significance: apiSignificance{
				Confident:       res.Confident,
				ConfidenceLevel: res.ConfidenceLevel,
				LeadingArm:      res.Arms[res.LeadingArm].Name,
			},
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"conversion_prefix": ConversionPrefix,
		"dimensions":        out,
	})
}

func (s *Server) analyzeAll(ctx context.Context) ([]*stats.Result, error) {
	results := make([]*stats.Result, 0, len(experiment.Dimensions))
	for _, d := range experiment.Dimensions {
		armStats, err := s.store.ArmStats(ctx, d, ConversionPrefix)
		if err != nil {
			return nil, err
		}
		results = append(results, stats.Analyze(d, armStats))
	}
	return results, nil
}

func toDimensionView(res *stats.Result) dimensionView {
	arms := make([]armView, len(res.Arms))
	for i, a := range res.Arms {
		arms[i] = armView{
			Index:          a.Index,
			Name:           a.Name,
			Sessions:       a.Sessions,
			Conversions:    a.Conversions,
			RatePercent:    a.Rate * 100,
			CILowerPercent: a.CILower * 100,
			CIUpperPercent: a.CIUpper * 100,
		}
	}
	return dimensionView{
		Dimension:         string(res.Dimension),
		Arms:              arms,
		Confident:         res.Confident,
		ConfidencePercent: res.ConfidenceLevel * 100,
		LeadingArm:        res.LeadingArm,
		LeadingArmName:    res.Arms[res.LeadingArm].Name,
	}
}
