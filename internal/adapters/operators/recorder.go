package operators

// Package operators appends local-admin logins to the externally-owned
// operator allow-list table. The table belongs to the wider platform; the
// gateway only inserts on first use and never reads it for authorization
// decisions.

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fleetyard/fleet-ui-api/internal/data/pgxutil"
	"github.com/fleetyard/fleet-ui-api/internal/ports"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Recorder implements ports.OperatorRecorder against PostgreSQL.
type Recorder struct {
	DB     *sql.DB
	Logger *slog.Logger
}

// NewRecorder creates an operator login recorder.
func NewRecorder(db *sql.DB, logger *slog.Logger) *Recorder {
	return &Recorder{DB: db, Logger: logger}
}

// RecordLogin inserts the operator on first login. A unique violation means
// the operator is already recorded and is treated as success.
func (r *Recorder) RecordLogin(ctx context.Context, op ports.OperatorLogin) error {
	if strings.TrimSpace(op.UserID) == "" {
		return errors.New("operator user id is required")
	}

	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		const query = `
			INSERT INTO operator_logins (user_id, email, first_login_at)
			VALUES ($1, $2, NOW())`
		_, execErr := conn.Exec(ctx, query, op.UserID, op.Email)
		return execErr
	})
	if err != nil {
		if isUniqueViolation(err) {
			if r.Logger != nil {
				r.Logger.DebugContext(ctx, "operator already recorded", "user_id", op.UserID)
			}
			return nil
		}
		return fmt.Errorf("record operator login: %w", err)
	}

	if r.Logger != nil {
		r.Logger.InfoContext(ctx, "operator recorded on first login", "user_id", op.UserID)
	}
	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
