package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/userdb/internal/core"
)

// Column names shared by every source format and the canonical artifact.
const (
	ColFirstname = "firstname"
	ColPhone     = "telephone_number"
	ColEmail     = "email"
	ColPassword  = "password"
	ColRole      = "role"
	ColCreatedAt = "created_at"
	ColChildren  = "children"
)

// requiredColumns must appear in a delimited source header. children is
// optional; a file without it yields records with no children.
var requiredColumns = []string{ColFirstname, ColPhone, ColEmail, ColPassword, ColRole, ColCreatedAt}

// CSVDelimiter separates fields in delimited user exports.
const CSVDelimiter = ';'

func init() {
	Register("csv", ReadCSV)
}

// ReadCSV decodes a semicolon-delimited export with a header row.
// Header names match case-insensitively. Rows whose column count differs
// from the header are skipped and logged; empty cells become null fields.
func ReadCSV(r io.Reader, label string) ([]core.Record, error) {
	cr := csv.NewReader(r)
	cr.Comma = CSVDelimiter
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, fmt.Errorf("invalid csv header: %w", err)
	}

	idx, err := core.ValidateHeaders(header, requiredColumns)
	if err != nil {
		return nil, err
	}

	var records []core.Record
	for rowNum := 1; ; rowNum++ {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid csv at row %d: %w", rowNum, err)
		}

		if len(row) != len(header) {
			line, _ := cr.FieldPos(0)
			slog.Warn("skipping malformed row",
				"source", label,
				"line", line,
				"columns", len(row),
				"want", len(header),
			)
			continue
		}

		records = append(records, csvRecord(row, idx, label, rowNum))
	}
	return records, nil
}

func csvRecord(row []string, idx core.HeaderIndex, label string, pos int) core.Record {
	rec := core.Record{
		Firstname: cell(row, idx, ColFirstname),
		Email:     cell(row, idx, ColEmail),
		Password:  cell(row, idx, ColPassword),
		Role:      cell(row, idx, ColRole),
		CreatedAt: cell(row, idx, ColCreatedAt),
		Source:    label,
		Position:  pos,
	}
	if phone := cell(row, idx, ColPhone); phone.Valid {
		rec.Phone = phone.String
	}
	if children := cell(row, idx, ColChildren); children.Valid {
		rec.Children = children.String
	}
	return rec
}

func cell(row []string, idx core.HeaderIndex, col string) pgtype.Text {
	pos, ok := idx[col]
	if !ok || pos >= len(row) {
		return pgtype.Text{Valid: false}
	}
	return core.ToPgText(row[pos])
}
