package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/nudgely/auth-service/internal/auth/domain"
)

type SessionRepository struct {
	db PgxPool
}

func NewSessionRepository(db PgxPool) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, token_family, generation, ip_address, user_agent, created_at, last_used_at, revoked_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(&s.ID, &s.UserID, &s.TokenFamily, &s.Generation,
		&s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.LastUsedAt, &s.RevokedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	query := `INSERT INTO sessions (id, user_id, token_family, generation, ip_address, user_agent, created_at, last_used_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.Exec(ctx, query,
		session.ID, session.UserID, session.TokenFamily, session.Generation,
		session.IPAddress, session.UserAgent, session.CreatedAt, session.LastUsedAt)
	return err
}

func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE id = $1
		LIMIT 1;
	`
	session, err := scanSession(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session by id: %w", err)
	}

	return session, nil
}

func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE user_id = $1 AND revoked_at IS NULL
		ORDER BY last_used_at DESC;
	`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// AdvanceGeneration is the rotation compare-and-increment. The WHERE clause
// carries the expected generation and the revocation check, so under two
// concurrent refreshes with the same token exactly one UPDATE matches a row.
func (r *SessionRepository) AdvanceGeneration(ctx context.Context, sessionID string, expectedGeneration int, ip, userAgent string) (*domain.Session, error) {
	query := `
		UPDATE sessions
		SET generation = generation + 1, last_used_at = now(), ip_address = $3, user_agent = $4
		WHERE id = $1 AND generation = $2 AND revoked_at IS NULL
		RETURNING ` + sessionColumns
	session, err := scanSession(r.db.QueryRow(ctx, query, sessionID, expectedGeneration, ip, userAgent))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to advance session generation: %w", err)
	}

	return session, nil
}

func (r *SessionRepository) Revoke(ctx context.Context, sessionID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE id = $1 AND revoked_at IS NULL
	`, sessionID)
	return err
}

func (r *SessionRepository) RevokeAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE user_id = $1 AND revoked_at IS NULL
	`, userID)
	return err
}

func (r *SessionRepository) RevokeFamily(ctx context.Context, tokenFamily string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE sessions SET revoked_at = now()
		WHERE token_family = $1 AND revoked_at IS NULL
	`, tokenFamily)
	return err
}
