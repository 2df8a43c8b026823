package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/userdb/internal/logging"
)

// ResetResult reports what Reset removed.
type ResetResult struct {
	Users    int64
	Children int64
}

// Reset deletes every child and user. Children go first so the foreign key
// holds on backends without cascading deletes.
func (s *Store) Reset(ctx context.Context) (ResetResult, error) {
	var res ResetResult
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		res, err = clearTables(ctx, tx)
		return err
	})
	if err != nil {
		return ResetResult{}, fmt.Errorf("reset: %w", err)
	}

	logging.FromContext(ctx).Info("store reset",
		"users", res.Users,
		"children", res.Children,
	)
	return res, nil
}

func clearTables(ctx context.Context, tx *sql.Tx) (ResetResult, error) {
	var res ResetResult

	r, err := tx.ExecContext(ctx, `DELETE FROM children`)
	if err != nil {
		return res, fmt.Errorf("delete children: %w", err)
	}
	res.Children, _ = r.RowsAffected()

	r, err = tx.ExecContext(ctx, `DELETE FROM users`)
	if err != nil {
		return res, fmt.Errorf("delete users: %w", err)
	}
	res.Users, _ = r.RowsAffected()

	return res, nil
}
