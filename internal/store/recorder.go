package store

import (
	"context"
	"fmt"

	"github.com/apilon/apilon-landing/internal/analytics"
)

// Recorder returns a Tagger that writes a session's tagging calls into the
// event log. Page path updates are stored as view/navigation events.
func (s *SQLiteStore) Recorder(sessionID string) analytics.Tagger {
	return analytics.TaggerFunc(func(ctx context.Context, cmd analytics.Command, target string, params analytics.Params) error {
		e := Event{SessionID: sessionID}

		switch cmd {
		case analytics.CommandEvent:
			e.Action = target
			e.Category, _ = params[analytics.ParamEventCategory].(string)
			e.Label, _ = params[analytics.ParamEventLabel].(string)
			if v, ok := params[analytics.ParamValue].(float64); ok {
				e.Value = &v
			}
		case analytics.CommandConfig:
			path, ok := params[analytics.ParamPagePath].(string)
			if !ok {
				return nil
			}
			e.Action = string(analytics.ActionView)
			e.Category = string(analytics.CategoryNavigation)
			e.Label = path
		case analytics.CommandSet, analytics.CommandJS:
			return nil
		default:
			return fmt.Errorf("unknown tagging command %q", cmd)
		}

		return s.RecordEvent(ctx, e)
	})
}
