package core

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// MaxPhoneDigits is the length a normalized phone is truncated to.
const MaxPhoneDigits = 9

var nonDigitRegex = regexp.MustCompile(`\D`)

// NormalizePhone reduces a raw phone value to its canonical form: digits only,
// no leading zeros, at most the last MaxPhoneDigits digits. Numbers are
// rendered as integers first so that 48123456789.0 becomes "123456789".
// Returns "" for nil, empty, or digit-free input.
func NormalizePhone(v any) string {
	var s string
	switch p := v.(type) {
	case nil:
		return ""
	case string:
		s = p
	case float64:
		if math.IsNaN(p) || math.IsInf(p, 0) {
			return ""
		}
		s = strconv.FormatFloat(math.Trunc(p), 'f', 0, 64)
	case float32:
		return NormalizePhone(float64(p))
	case json.Number:
		if i, err := p.Int64(); err == nil {
			s = strconv.FormatInt(i, 10)
		} else if f, err := p.Float64(); err == nil {
			return NormalizePhone(f)
		} else {
			s = p.String()
		}
	case int:
		s = strconv.Itoa(p)
	case int64:
		s = strconv.FormatInt(p, 10)
	case int32:
		s = strconv.FormatInt(int64(p), 10)
	default:
		return ""
	}

	s = nonDigitRegex.ReplaceAllString(s, "")
	s = strings.TrimLeft(s, "0")
	if len(s) > MaxPhoneDigits {
		s = s[len(s)-MaxPhoneDigits:]
	}
	return s
}

// NormalizePhones returns a copy of records with every Phone replaced by its
// normalized string.
func NormalizePhones(records []Record) []Record {
	out := make([]Record, len(records))
	for i, r := range records {
		r.Phone = NormalizePhone(r.Phone)
		out[i] = r
	}
	return out
}

// PhoneResult is the outcome of FilterWithPhone.
type PhoneResult struct {
	Kept         []Record
	KeptCount    int
	DroppedCount int
	Dropped      []DroppedRecord
}

// FilterWithPhone keeps records whose normalized phone is non-empty.
// Records must already have been through NormalizePhones.
func FilterWithPhone(records []Record) PhoneResult {
	res := PhoneResult{Kept: make([]Record, 0, len(records))}
	for _, r := range records {
		if r.PhoneString() == "" {
			res.DroppedCount++
			res.Dropped = append(res.Dropped, DroppedRecord{
				Ref:    r.Ref(),
				Phase:  PhasePresence,
				Reason: "no telephone number",
			})
			continue
		}
		res.KeptCount++
		res.Kept = append(res.Kept, r)
	}
	return res
}
