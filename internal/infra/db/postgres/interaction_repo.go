package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/bryanwahyu/datalens-ai/internal/domain/interaction"
)

type InteractionRepository struct {
	db *sql.DB
}

func NewInteractionRepository(db *sql.DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS ai_interactions (
  id          TEXT        PRIMARY KEY,
  tenant_id   TEXT        NOT NULL,
  operation   TEXT        NOT NULL,
  success     BOOLEAN     NOT NULL,
  error       TEXT        NOT NULL DEFAULT '',
  source      TEXT        NOT NULL DEFAULT '',
  input       TEXT        NOT NULL,
  result_json JSONB       NOT NULL,
  image_url   TEXT        NOT NULL DEFAULT '',
  duration_ms BIGINT      NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ai_interactions_tenant_created ON ai_interactions (tenant_id, created_at DESC);`

// EnsureSchema creates the interactions table and index when missing.
func (r *InteractionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts or updates an interaction record
func (r *InteractionRepository) Save(ctx context.Context, in *domain.Interaction) error {
	const q = `
INSERT INTO ai_interactions
  (id, tenant_id, operation, success, error, source, input, result_json, image_url, duration_ms, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
  success=EXCLUDED.success,
  error=EXCLUDED.error,
  source=EXCLUDED.source,
  result_json=EXCLUDED.result_json,
  image_url=EXCLUDED.image_url,
  duration_ms=EXCLUDED.duration_ms;
`
	tenant := in.TenantID
	if strings.TrimSpace(tenant) == "" {
		tenant = "-"
	}
	result := in.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, string(in.ID), tenant, string(in.Operation), in.Success, in.Error, in.Source,
		in.Input, result, in.ImageURL, in.DurationMS, createdAt)
	return err
}

// Paginate returns a page of interactions ordered by created_at desc
func (r *InteractionRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Interaction, error) {
	if page <= 0 {
		page = 1
	}
	switch {
	case pageSize <= 0:
		pageSize = 20
	case pageSize > 100:
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	if strings.TrimSpace(tenant) == "" {
		tenant = "-"
	}

	const q = `
SELECT id, tenant_id, operation, success, error, source, input, result_json, image_url, duration_ms, created_at
FROM ai_interactions
WHERE tenant_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*domain.Interaction{}
	for rows.Next() {
		var in domain.Interaction
		if err := rows.Scan(&in.ID, &in.TenantID, &in.Operation, &in.Success, &in.Error, &in.Source,
			&in.Input, &in.Result, &in.ImageURL, &in.DurationMS, &in.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &in)
	}
	return out, rows.Err()
}
