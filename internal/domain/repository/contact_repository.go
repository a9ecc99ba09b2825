package repository

import (
	"context"
	"database/sql"
	"fmt"

	"autohaven/internal/domain/model"
)

type ContactRepository interface {
	// Create stores msg; storing a message id twice is a no-op.
	Create(ctx context.Context, msg *model.ContactMessage) error
	// List returns messages newest first and the total stored.
	List(ctx context.Context, limit, offset int) ([]model.ContactMessage, int, error)
}

type pgContactRepository struct {
	db *sql.DB
}

func NewPgContactRepository(db *sql.DB) ContactRepository {
	return &pgContactRepository{db: db}
}

func (r *pgContactRepository) Create(ctx context.Context, m *model.ContactMessage) error {
	query := `INSERT INTO contact_messages (id, name, email, phone, message, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)
	          ON CONFLICT (id) DO NOTHING`
	_, err := r.db.ExecContext(ctx, query, m.ID, m.Name, m.Email, m.Phone, m.Message, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("pgContactRepository.Create: %w", err)
	}
	return nil
}

func (r *pgContactRepository) List(ctx context.Context, limit, offset int) ([]model.ContactMessage, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgContactRepository.List count: %w", err)
	}

	query := `SELECT id, name, email, phone, message, created_at
	          FROM contact_messages ORDER BY seq DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("pgContactRepository.List query: %w", err)
	}
	defer rows.Close()

	messages := []model.ContactMessage{}
	for rows.Next() {
		var m model.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Phone, &m.Message, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("pgContactRepository.List scan: %w", err)
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgContactRepository.List rows: %w", err)
	}
	return messages, total, nil
}
