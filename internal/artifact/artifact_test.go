package artifact

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/userdb/internal/core"
)

func TestFormatChildren(t *testing.T) {
	tests := []struct {
		name  string
		input []core.Child
		want  string
	}{
		{name: "none", input: nil, want: "[]"},
		{name: "one", input: []core.Child{{Name: "Al", Age: 5}}, want: "[{'name': 'Al', 'age': 5}]"},
		{
			name:  "two",
			input: []core.Child{{Name: "Al", Age: 5}, {Name: "Bo", Age: 0}},
			want:  "[{'name': 'Al', 'age': 5}, {'name': 'Bo', 'age': 0}]",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatChildren(tt.input); got != tt.want {
				t.Errorf("FormatChildren() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeChildren(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []core.Child
		wantErr bool
	}{
		{name: "empty list", input: "[]", want: []core.Child{}},
		{name: "single quoted", input: "[{'name': 'Al', 'age': 5}]", want: []core.Child{{Name: "Al", Age: 5}}},
		{name: "apostrophe in name", input: `[{'name': "O'Neil", 'age': 5}]`, wantErr: true},
		{name: "not a list", input: "Al (5)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeChildren(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeChildren(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if diff := cmp.Diff(tt.want, got); !tt.wantErr && diff != "" {
				t.Errorf("DecodeChildren(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestWriteThenUsers(t *testing.T) {
	users := []core.User{
		{
			Firstname: "Ala",
			Phone:     "600700800",
			Email:     "ala@x.pl",
			Password:  "p,w",
			Role:      "admin",
			CreatedAt: "2023-01-01 10:00:00",
			Children:  []core.Child{},
		},
		{
			Firstname: "Bob",
			Phone:     "500100200",
			Email:     "bob@x.pl",
			Password:  "pw",
			Role:      "user",
			CreatedAt: "2023-02-01 08:00:00",
			Children:  []core.Child{{Name: "Ewa", Age: 7}, {Name: "Jan", Age: 2}},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, users); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	firstLine, _, _ := strings.Cut(buf.String(), "\n")
	if firstLine != strings.Join(Header, ",") {
		t.Errorf("header = %q", firstLine)
	}

	rows, err := Read(&buf)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	got, err := Users(rows)
	if err != nil {
		t.Fatalf("Users() error = %v", err)
	}
	if diff := cmp.Diff(users, got); diff != "" {
		t.Errorf("users mismatch (-want +got):\n%s", diff)
	}
}

func TestUsersNamesBadRow(t *testing.T) {
	input := strings.Join(Header, ",") + "\n" +
		"Ala,600700800,ala@x.pl,pw,admin,2023-01-01,[]\n" +
		"Bob,500100200,bob@x.pl,pw,user,2023-01-02,Ewa (7)\n"

	rows, err := Read(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	_, err = Users(rows)
	var recErr *core.RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("Users() error = %v, want *core.RecordError", err)
	}
	if !strings.Contains(err.Error(), "line 3") || !strings.Contains(err.Error(), "bob@x.pl") {
		t.Errorf("error %q does not name the row", err)
	}
	if core.MapError(err).Code != "PIPE002" {
		t.Errorf("MapError code = %q, want PIPE002", core.MapError(err).Code)
	}
}

func TestWriteFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	path, err := WriteFile(dir, []core.User{{Firstname: "Ala", Phone: "1", Email: "a@x.pl"}})
	if err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if path != filepath.Join(dir, FileName) {
		t.Errorf("path = %q", path)
	}

	rows, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if len(rows) != 1 || rows[0].Children != "[]" {
		t.Errorf("rows = %+v, want one row with empty children", rows)
	}
}
