package repo

import (
	"context"
	"database/sql"

	"github.com/adams-okode/messaging-gateway-service/internal/model"
)

type PostgresMessageRepo struct {
	db *sql.DB
}

func NewPostgresMessageRepo(db *sql.DB) *PostgresMessageRepo {
	return &PostgresMessageRepo{db: db}
}

// Save inserts the record when it has no id yet, otherwise overwrites the
// mutable fields in full. Concurrent saves of the same record are
// last-write-wins; the store does not merge.
func (r *PostgresMessageRepo) Save(ctx context.Context, m model.Message) (model.Message, error) {
	if m.ID == 0 {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO messages (recipient, type, status, retries, subject, content, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			RETURNING id, created_at, updated_at
		`, m.Recipient, string(m.Type), string(m.Status), m.Retries, m.Subject, m.Content).
			Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
		return m, err
	}

	err := r.db.QueryRowContext(ctx, `
		UPDATE messages
		SET recipient = $2,
		    type = $3,
		    status = $4,
		    retries = $5,
		    subject = $6,
		    content = $7,
		    updated_at = now()
		WHERE id = $1
		RETURNING created_at, updated_at
	`, m.ID, m.Recipient, string(m.Type), string(m.Status), m.Retries, m.Subject, m.Content).
		Scan(&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *PostgresMessageRepo) FindByStatus(ctx context.Context, status model.Status, limit, offset int) ([]model.Message, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient, type, status, retries, subject, content, created_at, updated_at
		FROM messages
		WHERE status = $1
		ORDER BY created_at ASC
		LIMIT $2 OFFSET $3
	`, string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (r *PostgresMessageRepo) FindByTypeAndStatus(ctx context.Context, t model.MessageType, status model.Status, limit, offset int) ([]model.Message, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient, type, status, retries, subject, content, created_at, updated_at
		FROM messages
		WHERE type = $1 AND status = $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`, string(t), string(status), limit, offset)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func (r *PostgresMessageRepo) FindEligibleToRetry(ctx context.Context, status model.Status, maxRetries, limit, offset int) ([]model.Message, error) {
	limit, offset = clampPage(limit, offset)

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, recipient, type, status, retries, subject, content, created_at, updated_at
		FROM messages
		WHERE status = $1 AND retries < $2
		ORDER BY created_at ASC
		LIMIT $3 OFFSET $4
	`, string(status), maxRetries, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanMessages(rows)
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func scanMessages(rows *sql.Rows) ([]model.Message, error) {
	defer rows.Close()

	var out []model.Message
	for rows.Next() {
		var m model.Message
		var typ, status string
		if err := rows.Scan(
			&m.ID,
			&m.Recipient,
			&typ,
			&status,
			&m.Retries,
			&m.Subject,
			&m.Content,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, err
		}
		m.Type = model.MessageType(typ)
		m.Status = model.Status(status)
		out = append(out, m)
	}
	return out, rows.Err()
}
