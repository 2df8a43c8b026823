package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// UserRow is a persisted user.
type UserRow struct {
	ID        int64
	Firstname string
	Phone     string
	Email     string
	Password  string
	Role      string
	CreatedAt string
}

// ChildRow is a persisted child.
type ChildRow struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// AgeGroup is the number of children sharing an age.
type AgeGroup struct {
	Age   int `json:"age"`
	Count int `json:"count"`
}

// SimilarChild is another user's child of a given age, with its parent.
type SimilarChild struct {
	ParentName  string `json:"parent"`
	ParentPhone string `json:"telephone"`
	ChildName   string `json:"child"`
	Age         int    `json:"age"`
}

const userColumns = `id, COALESCE(firstname, ''), COALESCE(telephone_number, ''), COALESCE(email, ''),
	COALESCE(password, ''), COALESCE(role, ''), COALESCE(created_at, '')`

func scanUser(row *sql.Row) (UserRow, error) {
	var u UserRow
	err := row.Scan(&u.ID, &u.Firstname, &u.Phone, &u.Email, &u.Password, &u.Role, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return UserRow{}, ErrNotFound
	}
	return u, err
}

// UserByEmail returns the first user, by id, with the given email.
func (s *Store) UserByEmail(ctx context.Context, email string) (UserRow, error) {
	q := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ? ORDER BY id LIMIT 1`)
	u, err := scanUser(s.db.QueryRowContext(ctx, q, email))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return UserRow{}, fmt.Errorf("user by email: %w", err)
	}
	return u, err
}

// UserByPhone returns the first user, by id, with the given telephone number.
func (s *Store) UserByPhone(ctx context.Context, phone string) (UserRow, error) {
	q := s.dialect.rebind(`SELECT ` + userColumns + ` FROM users WHERE telephone_number = ? ORDER BY id LIMIT 1`)
	u, err := scanUser(s.db.QueryRowContext(ctx, q, phone))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return UserRow{}, fmt.Errorf("user by phone: %w", err)
	}
	return u, err
}

// CountUsers returns the number of users.
func (s *Store) CountUsers(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// CountChildren returns the number of children.
func (s *Store) CountChildren(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM children`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return n, nil
}

// OldestUser returns the user with the smallest created_at.
// Returns ErrNotFound when there are no users.
func (s *Store) OldestUser(ctx context.Context) (UserRow, error) {
	q := `SELECT ` + userColumns + ` FROM users ORDER BY created_at, id LIMIT 1`
	u, err := scanUser(s.db.QueryRowContext(ctx, q))
	if err != nil && !errors.Is(err, ErrNotFound) {
		return UserRow{}, fmt.Errorf("oldest user: %w", err)
	}
	return u, err
}

// ChildAgeGroups counts children per age, largest groups first and ties by
// ascending age.
func (s *Store) ChildAgeGroups(ctx context.Context) ([]AgeGroup, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT age, COUNT(*) AS cnt FROM children GROUP BY age ORDER BY cnt DESC, age ASC`)
	if err != nil {
		return nil, fmt.Errorf("child age groups: %w", err)
	}
	defer rows.Close()

	groups := []AgeGroup{}
	for rows.Next() {
		var g AgeGroup
		if err := rows.Scan(&g.Age, &g.Count); err != nil {
			return nil, fmt.Errorf("scan age group: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// ChildrenOf returns a user's children ordered by name.
func (s *Store) ChildrenOf(ctx context.Context, userID int64) ([]ChildRow, error) {
	q := s.dialect.rebind(`SELECT COALESCE(name, ''), age FROM children WHERE user_id = ? ORDER BY name, id`)
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("children of user %d: %w", userID, err)
	}
	defer rows.Close()

	children := []ChildRow{}
	for rows.Next() {
		var c ChildRow
		if err := rows.Scan(&c.Name, &c.Age); err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, c)
	}
	return children, rows.Err()
}

// SimilarChildren returns, for each distinct age among the user's own
// children, the children of other users with that age. Results are ordered
// by age, then parent id, then child id.
func (s *Store) SimilarChildren(ctx context.Context, userID int64) ([]SimilarChild, error) {
	q := s.dialect.rebind(`
		SELECT COALESCE(u.firstname, ''), COALESCE(u.telephone_number, ''), COALESCE(c.name, ''), c.age
		FROM children c
		JOIN users u ON c.user_id = u.id
		WHERE u.id <> ?
		  AND c.age IN (SELECT DISTINCT age FROM children WHERE user_id = ?)
		ORDER BY c.age, u.id, c.id`)
	rows, err := s.db.QueryContext(ctx, q, userID, userID)
	if err != nil {
		return nil, fmt.Errorf("similar children for user %d: %w", userID, err)
	}
	defer rows.Close()

	similar := []SimilarChild{}
	for rows.Next() {
		var sc SimilarChild
		if err := rows.Scan(&sc.ParentName, &sc.ParentPhone, &sc.ChildName, &sc.Age); err != nil {
			return nil, fmt.Errorf("scan similar child: %w", err)
		}
		similar = append(similar, sc)
	}
	return similar, rows.Err()
}
