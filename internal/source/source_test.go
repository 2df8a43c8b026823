package source

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgtype"
	"golang.org/x/text/encoding/unicode"

	"github.com/JonMunkholm/userdb/internal/core"
)

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

var null = pgtype.Text{}

func TestReadJSON(t *testing.T) {
	records, err := ReadFile(Spec{Path: filepath.Join("testdata", "users.json")})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := []core.Record{
		{
			Firstname: text("Ala"),
			Phone:     json.Number("48600700800"),
			Email:     text("ala@example.com"),
			Password:  text("secret1"),
			Role:      text("admin"),
			CreatedAt: text("2023-01-01 10:00:00"),
			Children:  []any{map[string]any{"name": "Ola", "age": json.Number("3")}},
			Source:    "users.json",
			Position:  1,
		},
		{
			Firstname: text("Bob"),
			Phone:     "+48 500 100 200",
			Email:     null,
			Password:  text("secret2"),
			Role:      text("user"),
			CreatedAt: text("2023-02-01 08:00:00"),
			Children:  []any{},
			Source:    "users.json",
			Position:  2,
		},
		{
			Firstname: text("Cid"),
			Email:     text("cid@example.com"),
			Password:  null,
			Role:      text("user"),
			CreatedAt: text("2023-03-01 08:00:00"),
			Source:    "users.json",
			Position:  3,
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadCSV(t *testing.T) {
	records, err := ReadFile(Spec{Path: filepath.Join("testdata", "users.csv")})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("len(records) = %d, want 2 (malformed row skipped)", len(records))
	}

	ewa := records[0]
	if ewa.Phone != "(48) 600-100-200" {
		t.Errorf("Phone = %v, want raw text", ewa.Phone)
	}
	if ewa.Children != "Jan (5), Iza (9)" {
		t.Errorf("Children = %v, want raw text", ewa.Children)
	}

	gus := records[1]
	if gus.Phone != nil {
		t.Errorf("empty phone cell = %v, want nil", gus.Phone)
	}
	if gus.Children != nil {
		t.Errorf("empty children cell = %v, want nil", gus.Children)
	}
	if gus.Position != 3 {
		t.Errorf("Position = %d, want 3", gus.Position)
	}
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := Decode(strings.NewReader("firstname;email\nA;a@b.pl\n"), "csv", "broken.csv")
	if err == nil {
		t.Fatal("Decode() expected error")
	}
	if !strings.Contains(err.Error(), "missing required columns") || !strings.Contains(err.Error(), "broken.csv") {
		t.Errorf("error = %q, want missing columns naming the source", err)
	}
}

func TestDecodeEncoding(t *testing.T) {
	const header = "firstname;telephone_number;email;password;role;created_at\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(
		header + "Zoë;1;z@x.pl;pw;user;2023-01-01\n")
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "invalid byte", input: header + "Zo\xff;1;z@x.pl;pw;user;2023-01-01\n", want: "Zo\uFFFD"},
		{name: "utf-8 bom with invalid byte", input: "\xef\xbb\xbf" + header + "Zo\xff;1;z@x.pl;pw;user;2023-01-01\n", want: "Zo\uFFFD"},
		{name: "utf-16 bom", input: utf16, want: "Zoë"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, err := Decode(strings.NewReader(tt.input), "csv", "enc.csv")
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if len(records) != 1 {
				t.Fatalf("len(records) = %d, want 1", len(records))
			}
			if got := records[0].Firstname.String; got != tt.want {
				t.Errorf("Firstname = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReadXML(t *testing.T) {
	records, err := ReadFile(Spec{Path: filepath.Join("testdata", "users.xml")})
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := []core.Record{
		{
			Firstname: text("Hal"),
			Phone:     "600200300",
			Email:     text("hal@example.com"),
			Password:  text("pw"),
			Role:      text("user"),
			CreatedAt: text("2023-05-01 12:00:00"),
			Children:  []any{[]any{"Kai", "4"}},
			Source:    "users.xml",
			Position:  1,
		},
		{
			Firstname: text("Ivy"),
			Email:     text("ivy@example.com"),
			Password:  text("pw"),
			Role:      text("user"),
			CreatedAt: text("2023-05-02 12:00:00"),
			Children:  []any{},
			Source:    "users.xml",
			Position:  2,
		},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadXMLAnyRoot(t *testing.T) {
	input := `<data><user><firstname>Ola</firstname><telephone_number>600100200</telephone_number>` +
		`<email>ola@x.pl</email><password>pw</password><role>user</role>` +
		`<created_at>2023-01-01 10:00:00</created_at></user></data>`

	records, err := ReadXML(strings.NewReader(input), "data.xml")
	if err != nil {
		t.Fatalf("ReadXML() error = %v", err)
	}

	want := []core.Record{{
		Firstname: text("Ola"),
		Phone:     "600100200",
		Email:     text("ola@x.pl"),
		Password:  text("pw"),
		Role:      text("user"),
		CreatedAt: text("2023-01-01 10:00:00"),
		Children:  []any{},
		Source:    "data.xml",
		Position:  1,
	}}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAll(t *testing.T) {
	specs := []Spec{
		{Path: filepath.Join("testdata", "users.xml")},
		{Path: filepath.Join("testdata", "users.json"), Format: "JSON"},
	}

	got, err := ReadAll(context.Background(), specs)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	var labels []string
	for _, s := range got {
		labels = append(labels, s.Source)
	}
	if diff := cmp.Diff([]string{"users.xml", "users.json"}, labels); diff != "" {
		t.Errorf("source order mismatch (-want +got):\n%s", diff)
	}
}

func TestReadAllErrors(t *testing.T) {
	tests := []struct {
		name    string
		spec    Spec
		wantErr string
	}{
		{
			name:    "missing file",
			spec:    Spec{Path: filepath.Join("testdata", "nope.json")},
			wantErr: "no such file",
		},
		{
			name:    "unknown format",
			spec:    Spec{Path: filepath.Join("testdata", "users.json"), Format: "yaml"},
			wantErr: "unknown source format",
		},
		{
			name:    "wrong decoder for contents",
			spec:    Spec{Path: filepath.Join("testdata", "users.csv"), Format: "json"},
			wantErr: "decode source users.csv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAll(context.Background(), []Spec{tt.spec})
			if err == nil {
				t.Fatal("ReadAll() expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}

	t.Run("missing file wraps fs.ErrNotExist", func(t *testing.T) {
		_, err := ReadFile(Spec{Path: filepath.Join("testdata", "nope.json")})
		if !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("error = %v, want fs.ErrNotExist", err)
		}
	})
}

func TestFormats(t *testing.T) {
	if diff := cmp.Diff([]string{"csv", "json", "xml"}, Formats()); diff != "" {
		t.Errorf("Formats() mismatch (-want +got):\n%s", diff)
	}
}
