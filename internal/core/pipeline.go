package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/userdb/internal/logging"
)

// Run applies every pipeline stage to the source outputs, in order, and
// returns the canonical users with per-stage counts.
//
// Run fails only when a record has an unparseable created_at; every other
// problem degrades to a dropped record or an empty field.
func Run(ctx context.Context, sources []SourceRecords) (*Result, error) {
	start := time.Now()
	log := logging.FromContext(ctx)
	res := &Result{}

	merged, counts := Merge(sources)
	res.Stats.Sources = counts
	res.Stats.Merged = len(merged)
	log.Info("sources merged", "records", len(merged), "sources", len(counts))

	emails := FilterValidEmails(merged)
	res.Stats.ValidEmails = emails.ValidCount
	res.Stats.InvalidEmails = emails.InvalidCount
	res.Dropped = append(res.Dropped, emails.Dropped...)
	log.Info("emails validated", "valid", emails.ValidCount, "invalid", emails.InvalidCount)

	phones := FilterWithPhone(NormalizePhones(emails.Valid))
	res.Stats.WithPhone = phones.KeptCount
	res.Stats.WithoutPhone = phones.DroppedCount
	res.Dropped = append(res.Dropped, phones.Dropped...)
	log.Info("phones normalized", "with_phone", phones.KeptCount, "without_phone", phones.DroppedCount)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	deduped, err := Deduplicate(phones.Kept)
	if err != nil {
		return nil, fmt.Errorf("deduplicate: %w", err)
	}
	res.Stats.Deduplicated = len(deduped.Records)
	res.Stats.DuplicatesDrop = deduped.DroppedCount
	res.Dropped = append(res.Dropped, deduped.Dropped...)
	log.Info("records deduplicated", "kept", len(deduped.Records), "dropped", deduped.DroppedCount)

	for _, d := range res.Dropped {
		log.Debug("record dropped", "record", d.Ref, "phase", d.Phase, "reason", d.Reason)
	}

	res.Users = make([]User, 0, len(deduped.Records))
	for _, r := range NormalizeChildren(deduped.Records) {
		res.Users = append(res.Users, ToUser(r))
	}

	res.Duration = time.Since(start)
	return res, nil
}

// ToUser converts a fully normalized record into a canonical User.
func ToUser(r Record) User {
	children, ok := r.Children.([]Child)
	if !ok {
		children = ParseChildren(r.Children)
	}
	return User{
		Firstname: TextOrEmpty(r.Firstname),
		Phone:     NormalizePhone(r.Phone),
		Email:     TextOrEmpty(r.Email),
		Password:  TextOrEmpty(r.Password),
		Role:      TextOrEmpty(r.Role),
		CreatedAt: TextOrEmpty(r.CreatedAt),
		Children:  children,
	}
}
