package query

import (
	"fmt"

	"github.com/JonMunkholm/userdb/internal/store"
)

// Result is the outcome of a command. Lines renders it for the terminal;
// results also marshal to JSON for the HTTP surface.
type Result interface {
	Lines() []string
}

// AccountCount is the result of print-all-accounts.
type AccountCount struct {
	Count int `json:"count"`
}

func (r AccountCount) Lines() []string {
	return []string{fmt.Sprint(r.Count)}
}

// OldestAccount is the result of print-oldest-account.
// Found is false when there are no accounts.
type OldestAccount struct {
	Found     bool   `json:"found"`
	Name      string `json:"name,omitempty"`
	Email     string `json:"email_address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func (r OldestAccount) Lines() []string {
	if !r.Found {
		return []string{"No accounts found"}
	}
	return []string{
		"name: " + r.Name,
		"email_address: " + r.Email,
		"created_at: " + r.CreatedAt,
	}
}

// AgeGroups is the result of group-by-age.
type AgeGroups []store.AgeGroup

func (r AgeGroups) Lines() []string {
	lines := make([]string, len(r))
	for i, g := range r {
		lines[i] = fmt.Sprintf("age: %d, count: %d", g.Age, g.Count)
	}
	return lines
}

// Children is the result of print-children.
type Children []store.ChildRow

func (r Children) Lines() []string {
	lines := make([]string, len(r))
	for i, c := range r {
		lines[i] = fmt.Sprintf("name: %s, age: %d", c.Name, c.Age)
	}
	return lines
}

// SimilarChildren is the result of find-similar-children-by-age.
type SimilarChildren []store.SimilarChild

func (r SimilarChildren) Lines() []string {
	lines := make([]string, len(r))
	for i, c := range r {
		lines[i] = fmt.Sprintf("parent: %s, telephone: %s, child: %s, age: %d", c.ParentName, c.ParentPhone, c.ChildName, c.Age)
	}
	return lines
}
