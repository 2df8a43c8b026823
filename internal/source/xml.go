package source

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/userdb/internal/core"
)

// xmlUsers is the document root. Any root element name is accepted; only
// its <user> children are read.
type xmlUsers struct {
	Users []xmlUser `xml:"user"`
}

// xmlUser uses pointers so that a missing element stays distinguishable
// from an empty one.
type xmlUser struct {
	Firstname *string      `xml:"firstname"`
	Phone     *string      `xml:"telephone_number"`
	Email     *string      `xml:"email"`
	Password  *string      `xml:"password"`
	Role      *string      `xml:"role"`
	CreatedAt *string      `xml:"created_at"`
	Children  *xmlChildren `xml:"children"`
}

type xmlChildren struct {
	Child []xmlChild `xml:"child"`
}

type xmlChild struct {
	Name *string `xml:"name"`
	Age  *string `xml:"age"`
}

func init() {
	Register("xml", ReadXML)
}

// ReadXML decodes the <user> elements under the document root. A missing <children> container yields
// no children; a missing scalar element yields a null field.
func ReadXML(r io.Reader, label string) ([]core.Record, error) {
	var doc xmlUsers
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid xml: %w", err)
	}

	records := make([]core.Record, 0, len(doc.Users))
	for i, u := range doc.Users {
		records = append(records, core.Record{
			Firstname: xmlText(u.Firstname),
			Phone:     xmlPhone(u.Phone),
			Email:     xmlText(u.Email),
			Password:  xmlText(u.Password),
			Role:      xmlText(u.Role),
			CreatedAt: xmlText(u.CreatedAt),
			Children:  xmlChildPairs(u.Children),
			Source:    label,
			Position:  i + 1,
		})
	}
	return records, nil
}

func xmlText(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return core.ToPgText(*s)
}

func xmlPhone(s *string) any {
	if t := xmlText(s); t.Valid {
		return t.String
	}
	return nil
}

// xmlChildPairs renders children as (name, age) pairs, the same shape a
// structured list has in the other formats. Missing name or age elements
// produce nil entries and are rejected by the children normalizer.
func xmlChildPairs(c *xmlChildren) any {
	if c == nil {
		return []any{}
	}
	pairs := make([]any, 0, len(c.Child))
	for _, ch := range c.Child {
		var name, age any
		if t := xmlText(ch.Name); t.Valid {
			name = t.String
		}
		if t := xmlText(ch.Age); t.Valid {
			age = t.String
		}
		pairs = append(pairs, []any{name, age})
	}
	return pairs
}
