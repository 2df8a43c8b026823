// Package artifact reads and writes the canonical intermediate file that
// sits between the pipeline and the loader.
//
// The artifact is a comma-delimited file with the header
//
//	firstname,telephone_number,email,password,role,created_at,children
//
// where children is a single-quoted literal such as
// [{'name': 'Al', 'age': 5}]. Readers turn the quotes into double quotes
// and decode the result as JSON.
package artifact

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/JonMunkholm/userdb/internal/core"
)

// Header is the canonical column order.
var Header = []string{"firstname", "telephone_number", "email", "password", "role", "created_at", "children"}

// FileName is the artifact name used inside an output directory.
const FileName = "final_data.csv"

// Row is one artifact line before its children column is decoded.
type Row struct {
	Line     int
	User     core.User // Children left empty
	Children string
}

// FormatChildren renders children as the single-quoted literal stored in
// the artifact.
func FormatChildren(children []core.Child) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, c := range children {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("{'name': '")
		b.WriteString(c.Name)
		b.WriteString("', 'age': ")
		b.WriteString(strconv.Itoa(c.Age))
		b.WriteByte('}')
	}
	b.WriteByte(']')
	return b.String()
}

// DecodeChildren converts a children literal to JSON and decodes it.
// Names containing quote characters cannot survive the quote translation and
// fail to decode.
func DecodeChildren(s string) ([]core.Child, error) {
	var children []core.Child
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &children); err != nil {
		return nil, err
	}
	if children == nil {
		children = []core.Child{}
	}
	return children, nil
}

// Write writes users as a canonical artifact.
func Write(w io.Writer, users []core.User) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, u := range users {
		rec := []string{u.Firstname, u.Phone, u.Email, u.Password, u.Role, u.CreatedAt, FormatChildren(u.Children)}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write row for %s: %w", u.Email, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes the artifact to dir/FileName, creating dir if needed,
// and returns the path written.
func WriteFile(dir string, users []core.User) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, FileName)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create artifact: %w", err)
	}
	if err := Write(f, users); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close artifact: %w", err)
	}
	return path, nil
}

// Read parses an artifact into rows. The children column is returned
// undecoded so that the loader can fail on the offending row.
func Read(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}
	idx, err := core.ValidateHeaders(header, Header)
	if err != nil {
		return nil, err
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv at line %d: %w", line, err)
		}
		rows = append(rows, Row{
			Line: line,
			User: core.User{
				Firstname: rec[idx["firstname"]],
				Phone:     rec[idx["telephone_number"]],
				Email:     rec[idx["email"]],
				Password:  rec[idx["password"]],
				Role:      rec[idx["role"]],
				CreatedAt: rec[idx["created_at"]],
			},
			Children: rec[idx["children"]],
		})
	}
	return rows, nil
}

// ReadFile parses the artifact at path.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Users decodes every row's children, failing on the first row whose
// children column cannot be decoded.
func Users(rows []Row) ([]core.User, error) {
	users := make([]core.User, 0, len(rows))
	for _, row := range rows {
		children, err := DecodeChildren(row.Children)
		if err != nil {
			return nil, &core.RecordError{
				Ref:   fmt.Sprintf("line %d (email %s)", row.Line, row.User.Email),
				Phase: core.PhaseChildren,
				Err:   fmt.Errorf("decode children %q: %w", row.Children, err),
			}
		}
		u := row.User
		u.Children = children
		users = append(users, u)
	}
	return users, nil
}
