package core

import (
	"fmt"
	"sort"
	"time"
)

// RecordError identifies the record that caused a batch-fatal failure.
type RecordError struct {
	Ref   string // Record reference, see Record.Ref
	Phase Phase  // Stage that rejected the record
	Err   error  // Underlying cause
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Phase, e.Ref, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// DedupResult is the outcome of Deduplicate.
type DedupResult struct {
	Records      []Record // Most recent first
	DroppedCount int
	Dropped      []DroppedRecord
}

// pairKey is the (phone, email) identity of a record.
type pairKey struct {
	phone string
	email string
}

// Deduplicate collapses records that share a phone or an email.
//
// Records are ordered newest first by created_at (ties keep input order).
// A record survives if it is the newest holder of its phone or the newest
// holder of its email; among survivors the first record per (phone, email)
// pair is kept. The result stays in newest-first order.
//
// Records must already carry normalized phones. Any unparseable created_at
// fails the whole batch with a *RecordError.
func Deduplicate(records []Record) (DedupResult, error) {
	stamps := make([]time.Time, len(records))
	for i, r := range records {
		if !r.CreatedAt.Valid {
			return DedupResult{}, &RecordError{Ref: r.Ref(), Phase: PhaseDeduplicate, Err: fmt.Errorf("missing created_at timestamp")}
		}
		t, err := ParseTimestamp(r.CreatedAt.String)
		if err != nil {
			return DedupResult{}, &RecordError{Ref: r.Ref(), Phase: PhaseDeduplicate, Err: err}
		}
		stamps[i] = t
	}

	order := make([]int, len(records))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return stamps[order[a]].After(stamps[order[b]])
	})

	// A: newest per phone. B: newest per email.
	inA := make(map[int]bool, len(records))
	inB := make(map[int]bool, len(records))
	seenPhone := make(map[string]bool, len(records))
	seenEmail := make(map[string]bool, len(records))
	for _, i := range order {
		r := records[i]
		if phone := r.PhoneString(); !seenPhone[phone] {
			seenPhone[phone] = true
			inA[i] = true
		}
		if email := TextOrEmpty(r.Email); !seenEmail[email] {
			seenEmail[email] = true
			inB[i] = true
		}
	}

	res := DedupResult{Records: make([]Record, 0, len(inA)+len(inB))}
	seenPair := make(map[pairKey]bool, len(records))
	for _, i := range order {
		r := records[i]
		key := pairKey{phone: r.PhoneString(), email: TextOrEmpty(r.Email)}
		if (!inA[i] && !inB[i]) || seenPair[key] {
			res.DroppedCount++
			res.Dropped = append(res.Dropped, DroppedRecord{
				Ref:    r.Ref(),
				Phase:  PhaseDeduplicate,
				Reason: "newer record holds this phone and email",
			})
			continue
		}
		seenPair[key] = true
		res.Records = append(res.Records, r)
	}

	return res, nil
}
