package core

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func dedupRecord(name, phone, email, createdAt string) Record {
	return Record{
		Firstname: ToPgText(name),
		Phone:     phone,
		Email:     ToPgText(email),
		CreatedAt: ToPgText(createdAt),
		Source:    "test",
	}
}

func names(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Firstname.String
	}
	return out
}

func TestDeduplicate(t *testing.T) {
	tests := []struct {
		name    string
		input   []Record
		want    []string
		dropped int
	}{
		{
			name: "newest holder of each key wins",
			input: []Record{
				dedupRecord("R1", "111", "e1@x.pl", "2023-01-10 00:00:00"),
				dedupRecord("R2", "111", "e2@x.pl", "2023-01-20 00:00:00"),
				dedupRecord("R3", "222", "e1@x.pl", "2023-01-05 00:00:00"),
			},
			want:    []string{"R2", "R1", "R3"},
			dropped: 0,
		},
		{
			name: "older record sharing both keys dropped",
			input: []Record{
				dedupRecord("old", "111", "a@x.pl", "2022-01-01"),
				dedupRecord("new", "111", "a@x.pl", "2023-01-01"),
			},
			want:    []string{"new"},
			dropped: 1,
		},
		{
			name: "record older on both keys dropped",
			input: []Record{
				dedupRecord("A", "111", "a@x.pl", "2023-03-01"),
				dedupRecord("B", "222", "b@x.pl", "2023-02-01"),
				dedupRecord("C", "111", "b@x.pl", "2023-01-01"),
			},
			want:    []string{"A", "B"},
			dropped: 1,
		},
		{
			name: "ties keep arrival order",
			input: []Record{
				dedupRecord("first", "111", "a@x.pl", "2023-01-01 10:00:00"),
				dedupRecord("second", "111", "a@x.pl", "2023-01-01T10:00:00"),
			},
			want:    []string{"first"},
			dropped: 1,
		},
		{
			name:    "empty input",
			input:   nil,
			want:    []string{},
			dropped: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Deduplicate(tt.input)
			if err != nil {
				t.Fatalf("Deduplicate() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, names(res.Records)); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
			if res.DroppedCount != tt.dropped {
				t.Errorf("DroppedCount = %d, want %d", res.DroppedCount, tt.dropped)
			}
		})
	}
}

func TestDeduplicateNoSharedPairs(t *testing.T) {
	input := []Record{
		dedupRecord("a", "1", "a@x.pl", "2023-01-01"),
		dedupRecord("b", "1", "b@x.pl", "2023-01-02"),
		dedupRecord("c", "2", "a@x.pl", "2023-01-03"),
		dedupRecord("d", "2", "b@x.pl", "2023-01-04"),
		dedupRecord("e", "3", "c@x.pl", "2023-01-05"),
		dedupRecord("f", "3", "c@x.pl", "2023-01-06"),
	}

	res, err := Deduplicate(input)
	if err != nil {
		t.Fatalf("Deduplicate() error = %v", err)
	}

	seen := make(map[pairKey]bool)
	for _, r := range res.Records {
		key := pairKey{phone: r.PhoneString(), email: r.Email.String}
		if seen[key] {
			t.Errorf("pair %v kept twice", key)
		}
		seen[key] = true
	}
	if len(res.Records)+res.DroppedCount != len(input) {
		t.Errorf("kept %d + dropped %d != input %d", len(res.Records), res.DroppedCount, len(input))
	}
}

func TestDeduplicateBadTimestamp(t *testing.T) {
	input := []Record{
		dedupRecord("ok", "1", "ok@x.pl", "2023-01-01"),
		{
			Firstname: ToPgText("bad"),
			Phone:     "2",
			Email:     ToPgText("bad@x.pl"),
			CreatedAt: ToPgText("last tuesday"),
			Source:    "users.json",
			Position:  2,
		},
	}

	_, err := Deduplicate(input)
	if err == nil {
		t.Fatal("Deduplicate() expected error")
	}

	var recErr *RecordError
	if !errors.As(err, &recErr) {
		t.Fatalf("error %T is not *RecordError", err)
	}
	for _, want := range []string{"users.json#2", "bad@x.pl", "last tuesday"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestDeduplicateMissingTimestamp(t *testing.T) {
	_, err := Deduplicate([]Record{{Phone: "1", Email: ToPgText("a@x.pl"), Source: "s", Position: 1}})
	if err == nil {
		t.Fatal("Deduplicate() expected error for missing created_at")
	}
}
