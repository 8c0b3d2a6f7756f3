package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"aegis/pkg/core/prompt"
)

// ListPromptRecords implements prompt.Store, loading every prompt version
// so the registry's Reload can pick the highest per (model, layer, name).
func (g *Gateway) ListPromptRecords(ctx context.Context) ([]prompt.Record, error) {
	const sql = `
		SELECT id, model, layer, name, version, category, description, comments, system_prompt,
		       user_prompt_template, tool_schema_json, uses_global, created_at, updated_at
		FROM prompts
		ORDER BY model, layer, name, version`

	var records []prompt.Record
	err := g.query(ctx, sql, nil, func(row pgx.Rows) error {
		var rec prompt.Record
		var layer string
		var toolSchema *string
		if err := row.Scan(&rec.ID, &rec.Model, &layer, &rec.Name, &rec.Version, &rec.Category, &rec.Description,
			&rec.Comments, &rec.SystemPrompt, &rec.UserPromptTmpl, &toolSchema, &rec.UsesGlobal,
			&rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return err
		}
		rec.Layer = prompt.Layer(layer)
		if toolSchema != nil {
			rec.ToolSchemaJSON = *toolSchema
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

// UpsertPromptRecord inserts a prompt version. Prompts are versioned:
// calling this with an existing (model, layer, name) and a new rec.Version
// adds a new row, leaving older versions queryable for audit/rollback;
// calling it with an existing (model, layer, name, version) updates that
// row in place.
func (g *Gateway) UpsertPromptRecord(ctx context.Context, rec prompt.Record) error {
	const sql = `
		INSERT INTO prompts (model, layer, name, version, category, description, comments, system_prompt,
		                      user_prompt_template, tool_schema_json, uses_global, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12, $13)
		ON CONFLICT (model, layer, name, version) DO UPDATE SET
			category = EXCLUDED.category,
			description = EXCLUDED.description,
			comments = EXCLUDED.comments,
			system_prompt = EXCLUDED.system_prompt,
			user_prompt_template = EXCLUDED.user_prompt_template,
			tool_schema_json = EXCLUDED.tool_schema_json,
			uses_global = EXCLUDED.uses_global,
			updated_at = EXCLUDED.updated_at`

	now := time.Now()
	createdAt, updatedAt := rec.CreatedAt, rec.UpdatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err := g.exec(ctx, sql, rec.Model, string(rec.Layer), rec.Name, rec.Version, rec.Category, rec.Description,
		rec.Comments, rec.SystemPrompt, rec.UserPromptTmpl, rec.ToolSchemaJSON, rec.UsesGlobal, createdAt, updatedAt)
	return err
}
