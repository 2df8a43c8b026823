package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/logging"
)

const (
	insertUserSQL = `INSERT INTO users (firstname, telephone_number, email, password, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?) RETURNING id`
	insertChildSQL = `INSERT INTO children (name, age, user_id) VALUES (?, ?, ?)`
)

// LoadResult reports what a Load call inserted.
type LoadResult struct {
	Users    int
	Children int
	Duration time.Duration
}

// Load inserts users and their children in a single transaction. Each user
// gets a store-assigned id that its children reference. Any failure rolls
// back the whole batch.
func (s *Store) Load(ctx context.Context, users []core.User) (LoadResult, error) {
	return s.load(ctx, users, false)
}

// Replace deletes every stored user and child and loads users in the same
// transaction, so a failed batch keeps the previous contents.
func (s *Store) Replace(ctx context.Context, users []core.User) (LoadResult, error) {
	return s.load(ctx, users, true)
}

func (s *Store) load(ctx context.Context, users []core.User, replace bool) (LoadResult, error) {
	start := time.Now()
	var res LoadResult

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if replace {
			if _, err := clearTables(ctx, tx); err != nil {
				return err
			}
		}
		return s.insertUsers(ctx, tx, users, &res)
	})
	if err != nil {
		return LoadResult{}, fmt.Errorf("load: %w", err)
	}

	res.Duration = time.Since(start)
	logging.FromContext(ctx).Info("users loaded",
		"users", res.Users,
		"children", res.Children,
		"replace", replace,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}

func (s *Store) insertUsers(ctx context.Context, tx *sql.Tx, users []core.User, res *LoadResult) error {
	userStmt, err := tx.PrepareContext(ctx, s.dialect.rebind(insertUserSQL))
	if err != nil {
		return fmt.Errorf("prepare user insert: %w", err)
	}
	defer userStmt.Close()

	childStmt, err := tx.PrepareContext(ctx, s.dialect.rebind(insertChildSQL))
	if err != nil {
		return fmt.Errorf("prepare child insert: %w", err)
	}
	defer childStmt.Close()

	for i, u := range users {
		var id int64
		err := userStmt.QueryRowContext(ctx,
			u.Firstname, u.Phone, u.Email, u.Password, u.Role, u.CreatedAt,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("insert user %d (email %s): %w", i+1, u.Email, err)
		}
		res.Users++

		for _, c := range u.Children {
			if _, err := childStmt.ExecContext(ctx, c.Name, c.Age, id); err != nil {
				return fmt.Errorf("insert child %q of user %d (email %s): %w", c.Name, i+1, u.Email, err)
			}
			res.Children++
		}
	}
	return nil
}
