package source

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/userdb/internal/core"
)

func init() {
	Register("json", ReadJSON)
}

// ReadJSON decodes a JSON array of user objects. Missing keys and nulls
// become null fields; numbers are kept as json.Number so that a numeric
// phone reaches the normalizer unchanged.
func ReadJSON(r io.Reader, label string) ([]core.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	records := make([]core.Record, 0, len(rows))
	for i, row := range rows {
		records = append(records, jsonRecord(lowerKeys(row), label, i+1))
	}
	return records, nil
}

func jsonRecord(row map[string]any, label string, pos int) core.Record {
	return core.Record{
		Firstname: jsonText(row[ColFirstname]),
		Phone:     row[ColPhone],
		Email:     jsonText(row[ColEmail]),
		Password:  jsonText(row[ColPassword]),
		Role:      jsonText(row[ColRole]),
		CreatedAt: jsonText(row[ColCreatedAt]),
		Children:  row[ColChildren],
		Source:    label,
		Position:  pos,
	}
}

// jsonText renders a scalar JSON value as text. Objects and arrays are
// treated as absent.
func jsonText(v any) pgtype.Text {
	switch t := v.(type) {
	case string:
		return core.ToPgText(t)
	case json.Number:
		return core.ToPgText(t.String())
	case bool:
		return core.ToPgText(fmt.Sprint(t))
	default:
		return pgtype.Text{Valid: false}
	}
}

func lowerKeys(row map[string]any) map[string]any {
	out := make(map[string]any, len(row))
	for k, v := range row {
		out[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return out
}
