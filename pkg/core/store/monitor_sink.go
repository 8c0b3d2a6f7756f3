package store

import (
	"context"
	"encoding/json"

	"aegis/pkg/core/monitor"
)

// WriteEntries implements monitor.Sink, persisting a batch of telemetry
// entries with one single-row insert per entry, stopping at the first
// failure.
func (g *Gateway) WriteEntries(ctx context.Context, entries []monitor.Entry) error {
	if len(entries) == 0 {
		return nil
	}

	const sql = `
		INSERT INTO monitor_entries (execution_id, stage, status, duration_ms, detail_json, recorded_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	for _, e := range entries {
		var detailJSON []byte
		if e.Detail != nil {
			var err error
			detailJSON, err = json.Marshal(e.Detail)
			if err != nil {
				return err
			}
		}
		if _, err := g.exec(ctx, sql, e.ExecutionID, e.Stage, e.Status, e.DurationMS, detailJSON, e.Timestamp); err != nil {
			return err
		}
	}
	return nil
}
