package query

import (
	"context"
	"errors"

	"github.com/JonMunkholm/userdb/internal/store"
)

// Command names accepted by Execute.
const (
	CmdPrintAllAccounts   = "print-all-accounts"
	CmdPrintOldestAccount = "print-oldest-account"
	CmdGroupByAge         = "group-by-age"
	CmdPrintChildren      = "print-children"
	CmdFindSimilarByAge   = "find-similar-children-by-age"
)

// Command describes one query command.
type Command struct {
	Name        string
	AdminOnly   bool
	Description string
	run         func(ctx context.Context, s *Service, sess *Session) (Result, error)
}

var commands = []Command{
	{
		Name:        CmdPrintAllAccounts,
		AdminOnly:   true,
		Description: "Print the number of accounts",
		run: func(ctx context.Context, s *Service, _ *Session) (Result, error) {
			n, err := s.store.CountUsers(ctx)
			if err != nil {
				return nil, err
			}
			return AccountCount{Count: n}, nil
		},
	},
	{
		Name:        CmdPrintOldestAccount,
		AdminOnly:   true,
		Description: "Print the oldest account",
		run: func(ctx context.Context, s *Service, _ *Session) (Result, error) {
			u, err := s.store.OldestUser(ctx)
			if errors.Is(err, store.ErrNotFound) {
				return OldestAccount{}, nil
			}
			if err != nil {
				return nil, err
			}
			return OldestAccount{Found: true, Name: u.Firstname, Email: u.Email, CreatedAt: u.CreatedAt}, nil
		},
	},
	{
		Name:        CmdGroupByAge,
		AdminOnly:   true,
		Description: "Count children by age",
		run: func(ctx context.Context, s *Service, _ *Session) (Result, error) {
			groups, err := s.store.ChildAgeGroups(ctx)
			if err != nil {
				return nil, err
			}
			return AgeGroups(groups), nil
		},
	},
	{
		Name:        CmdPrintChildren,
		Description: "Print your children",
		run: func(ctx context.Context, s *Service, sess *Session) (Result, error) {
			children, err := s.store.ChildrenOf(ctx, sess.UserID)
			if err != nil {
				return nil, err
			}
			return Children(children), nil
		},
	},
	{
		Name:        CmdFindSimilarByAge,
		Description: "Find other users' children of the same age as yours",
		run: func(ctx context.Context, s *Service, sess *Session) (Result, error) {
			similar, err := s.store.SimilarChildren(ctx, sess.UserID)
			if err != nil {
				return nil, err
			}
			return SimilarChildren(similar), nil
		},
	},
}

// Lookup returns the command with the given name.
func Lookup(name string) (Command, bool) {
	for _, c := range commands {
		if c.Name == name {
			return c, true
		}
	}
	return Command{}, false
}

// Commands returns every command in display order.
func Commands() []Command {
	out := make([]Command, len(commands))
	copy(out, commands)
	return out
}
