// Package decode turns raw storage records into validated credentials.
//
// Two record layouts are understood. A packed record holds a whole account as
// a protobuf-encoded message under "<prefix>.<n>". Discrete records spread one
// account over "<prefix>.<n>.<field>" keys and are joined by ordinal. A packed
// account wins over discrete data with the same ordinal. Records from
// different tables are never joined.
package decode

import (
	"errors"
	"fmt"
	"sort"

	"github.com/leefowlercu/restore2fa/internal/otp"
	"github.com/leefowlercu/restore2fa/internal/storage"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrMissingSecret   = errors.New("missing secret")
	ErrInvalidField    = errors.New("invalid field")
)

// Skip records one account that could not be decoded.
type Skip struct {
	Source  string
	Key     string
	Ordinal int
	Reason  error
}

func (s Skip) Error() string {
	if s.Source != "" {
		return fmt.Sprintf("record %s in %s skipped; %v", s.Key, s.Source, s.Reason)
	}
	return fmt.Sprintf("record %s skipped; %v", s.Key, s.Reason)
}

func (s Skip) Unwrap() error {
	return s.Reason
}

// Result is the outcome of decoding one store.
type Result struct {
	// Credentials are ordered by source, in the order sources first appear,
	// then by ordinal.
	Credentials []otp.Credential
	Skips       []Skip
}

// account identifies one account: ordinals never join across sources.
type account struct {
	source  string
	ordinal int
}

// Decode groups records by source and ordinal and builds one credential per
// account. A record that fails to decode is reported in Result.Skips and
// never stops the others.
func Decode(records []storage.RawRecord) Result {
	packed := make(map[account]storage.RawRecord)
	discrete := make(map[account]*builder)
	rank := make(map[string]int)

	for _, rec := range records {
		if _, ok := rank[rec.Source]; !ok {
			rank[rec.Source] = len(rank)
		}
		id := account{source: rec.Source, ordinal: rec.Ordinal}

		if rec.Packed() {
			if _, dup := packed[id]; !dup {
				packed[id] = rec
			}
			continue
		}

		b, ok := discrete[id]
		if !ok {
			b = newBuilder(rec.Ordinal)
			discrete[id] = b
		}
		b.add(rec)
	}

	ids := make([]account, 0, len(packed)+len(discrete))
	for id := range packed {
		ids = append(ids, id)
	}
	for id := range discrete {
		if _, ok := packed[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		if ri, rj := rank[ids[i].source], rank[ids[j].source]; ri != rj {
			return ri < rj
		}
		return ids[i].ordinal < ids[j].ordinal
	})

	var res Result
	for _, id := range ids {
		if rec, ok := packed[id]; ok {
			cred, err := decodePackedAccount(rec)
			if err == nil {
				res.Credentials = append(res.Credentials, cred)
				continue
			}
			res.Skips = append(res.Skips, Skip{Source: id.source, Key: rec.Key, Ordinal: id.ordinal, Reason: err})
		}

		b, ok := discrete[id]
		if !ok {
			continue
		}

		cred, err := b.build()
		if err != nil {
			res.Skips = append(res.Skips, Skip{Source: id.source, Key: b.key(), Ordinal: id.ordinal, Reason: err})
			continue
		}
		res.Credentials = append(res.Credentials, cred)
	}

	return res
}

func decodePackedAccount(rec storage.RawRecord) (otp.Credential, error) {
	p, err := decodePacked(rec.Value)
	if err != nil {
		return otp.Credential{}, err
	}
	return newCredential(p, rec.Ordinal)
}

// newCredential applies the fallback label before validation.
func newCredential(p otp.Params, ordinal int) (otp.Credential, error) {
	if len(p.Secret) == 0 {
		return otp.Credential{}, ErrMissingSecret
	}
	if p.Name == "" && p.Issuer == "" {
		p.Name = fmt.Sprintf("account-%d", ordinal)
	}

	cred, err := otp.NewCredential(p)
	if err != nil {
		return otp.Credential{}, fmt.Errorf("%w; %w", ErrInvalidField, err)
	}
	return cred, nil
}
