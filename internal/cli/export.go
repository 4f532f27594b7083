package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/apilon/apilon-landing/internal/store"
)

var (
	exportFormat string
	exportLimit  int
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded interaction events",
	Long: `Export recorded interaction events in CSV or JSON format, newest first.

Events are only recorded while LANDING_RECORD_EVENTS is enabled.

Examples:
  apilon export --format csv > events.csv
  apilon export --format json --limit 500 > events.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "f", "csv", "output format (csv or json)")
	exportCmd.Flags().IntVarP(&exportLimit, "limit", "n", 0, "maximum number of events (0 for all)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFormat != "csv" && exportFormat != "json" {
		return fmt.Errorf("invalid format: must be 'csv' or 'json'")
	}

	return withStore(func(s *store.SQLiteStore) error {
		events, err := s.GetEvents(context.Background(), exportLimit)
		if err != nil {
			return fmt.Errorf("failed to get events: %w", err)
		}

		if exportFormat == "csv" {
			return exportCSV(cmd.OutOrStdout(), events)
		}
		return exportJSON(cmd.OutOrStdout(), events)
	})
}

func exportCSV(out io.Writer, events []*store.Event) error {
	w := csv.NewWriter(out)

	// Write header
	if err := w.Write([]string{"timestamp", "session_id", "action", "category", "label", "value"}); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	// Write rows
	for _, e := range events {
		value := ""
		if e.Value != nil {
			value = strconv.FormatFloat(*e.Value, 'f', -1, 64)
		}
		row := []string{
			strconv.FormatInt(e.CreatedAt.Unix(), 10),
			e.SessionID,
			e.Action,
			e.Category,
			e.Label,
			value,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

type jsonExport struct {
	Events []jsonEvent `json:"events"`
}

type jsonEvent struct {
	Timestamp int64    `json:"timestamp"`
	SessionID string   `json:"session_id"`
	Action    string   `json:"action"`
	Category  string   `json:"category"`
	Label     string   `json:"label,omitempty"`
	Value     *float64 `json:"value,omitempty"`
}

func exportJSON(out io.Writer, events []*store.Event) error {
	export := jsonExport{
		Events: make([]jsonEvent, len(events)),
	}

	for i, e := range events {
		export.Events[i] = jsonEvent{
			Timestamp: e.CreatedAt.Unix(),
			SessionID: e.SessionID,
			Action:    e.Action,
			Category:  e.Category,
			Label:     e.Label,
			Value:     e.Value,
		}
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(export)
}
