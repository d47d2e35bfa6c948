package mysql

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
  id          VARCHAR(36)  NOT NULL PRIMARY KEY,
  tenant_id   VARCHAR(64)  NOT NULL,
  operation   VARCHAR(32)  NOT NULL,
  success     BOOLEAN      NOT NULL,
  error       VARCHAR(255) NOT NULL DEFAULT '',
  source      VARCHAR(16)  NOT NULL DEFAULT '',
  input       TEXT         NOT NULL,
  result_json JSON         NOT NULL,
  image_url   VARCHAR(512) NOT NULL DEFAULT '',
  duration_ms BIGINT       NOT NULL DEFAULT 0,
  created_at  DATETIME(3)  NOT NULL,
  INDEX idx_ai_interactions_tenant_created (tenant_id, created_at)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

// EnsureSchema creates the interactions table when missing.
func (r *InteractionRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, schema)
	return err
}

// Save inserts an interaction record
func (r *InteractionRepository) Save(ctx context.Context, in *domain.Interaction) error {
	const q = `
INSERT INTO ai_interactions
  (id, tenant_id, operation, success, error, source, input, result_json, image_url, duration_ms, created_at)
VALUES (?,?,?,?,?,?,?,?,?,?,?)
ON DUPLICATE KEY UPDATE
  success=VALUES(success), error=VALUES(error), source=VALUES(source), result_json=VALUES(result_json), image_url=VALUES(image_url), duration_ms=VALUES(duration_ms);
`
	tenant := stringOrDash(in.TenantID)
	result := in.Result
	if strings.TrimSpace(result) == "" {
		// result_json column requires valid JSON; use empty object
		result = "{}"
	}
	createdAt := in.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := r.db.ExecContext(ctx, q, in.ID, tenant, in.Operation, in.Success, in.Error, in.Source,
		in.Input, result, in.ImageURL, in.DurationMS, createdAt.UTC())
	return err
}

// Paginate returns a page of interactions ordered by created_at desc
func (r *InteractionRepository) Paginate(ctx context.Context, tenant string, page, pageSize int) ([]*domain.Interaction, error) {
	limit, offset := pageBounds(page, pageSize)

	const q = `
SELECT id, tenant_id, operation, success, error, source, input, result_json, image_url, duration_ms, created_at
FROM ai_interactions
WHERE tenant_id=?
ORDER BY created_at DESC, id DESC
LIMIT ? OFFSET ?;
`
	rows, err := r.db.QueryContext(ctx, q, stringOrDash(tenant), limit, offset)
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
