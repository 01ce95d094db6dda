package decode

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/leefowlercu/restore2fa/internal/otp"
	"github.com/leefowlercu/restore2fa/internal/storage"
)

// builder collects the discrete fields of one account until it is finalized.
// The first value seen for a field wins.
type builder struct {
	ordinal int
	keys    []string
	fields  map[string]string
}

func newBuilder(ordinal int) *builder {
	return &builder{
		ordinal: ordinal,
		fields:  make(map[string]string),
	}
}

func (b *builder) add(rec storage.RawRecord) {
	b.keys = append(b.keys, rec.Key)
	if _, ok := b.fields[rec.Field]; ok {
		return
	}
	b.fields[rec.Field] = strings.TrimSpace(string(rec.Value))
}

// key names the group in diagnostics.
func (b *builder) key() string {
	sort.Strings(b.keys)
	for _, k := range b.keys {
		if strings.HasSuffix(k, ".secret") {
			return k
		}
	}
	if len(b.keys) > 0 {
		return b.keys[0]
	}
	return strconv.Itoa(b.ordinal)
}

func (b *builder) build() (otp.Credential, error) {
	raw := b.fields["secret"]
	if raw == "" {
		return otp.Credential{}, ErrMissingSecret
	}

	secret, err := otp.DecodeSecret(raw)
	if err != nil {
		return otp.Credential{}, fmt.Errorf("%w: secret; %w", ErrInvalidField, err)
	}

	p := otp.Params{
		Name:      b.name(),
		Issuer:    b.fields["issuer"],
		Secret:    secret,
		Algorithm: otp.Algorithm(b.fields["algorithm"]),
	}

	if p.Type, err = discreteType(b.fields["type"]); err != nil {
		return otp.Credential{}, err
	}
	if p.Digits, err = b.int("digits"); err != nil {
		return otp.Credential{}, err
	}
	if p.Period, err = b.int("period"); err != nil {
		return otp.Credential{}, err
	}
	if v := b.fields["counter"]; v != "" {
		if p.Counter, err = strconv.ParseUint(v, 10, 64); err != nil {
			return otp.Credential{}, fmt.Errorf("%w: counter %q", ErrInvalidField, v)
		}
	}

	return newCredential(p, b.ordinal)
}

// name prefers the name the account was provisioned with over the editable
// display name.
func (b *builder) name() string {
	for _, f := range []string{"original_name", "name", "email"} {
		if v := b.fields[f]; v != "" {
			return v
		}
	}
	return ""
}

func (b *builder) int(field string) (int, error) {
	v := b.fields[field]
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidField, field, v)
	}
	return n, nil
}

// discreteType accepts the type names and the legacy numeric codes
// (0 time-based, 1 counter-based).
func discreteType(v string) (otp.Type, error) {
	switch strings.ToLower(v) {
	case "":
		return "", nil
	case "0", string(otp.TypeTOTP):
		return otp.TypeTOTP, nil
	case "1", string(otp.TypeHOTP):
		return otp.TypeHOTP, nil
	default:
		return "", fmt.Errorf("%w: type %q", ErrInvalidField, v)
	}
}
