package otp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Scheme is the key-provisioning URI scheme.
const Scheme = "otpauth"

var secretEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ErrInvalidURI is returned by ParseURI for input that is not an otpauth URI.
var ErrInvalidURI = errors.New("invalid otpauth uri")

// BuildURI renders c as
//
//	otpauth://{type}/{label}?secret={base32}&issuer={issuer}[&algorithm=..][&digits=..][&period=..|&counter=..]
//
// Parameters equal to the implicit defaults are omitted. The counter is always
// written for HOTP.
func BuildURI(c Credential) string {
	var b strings.Builder

	b.WriteString(Scheme)
	b.WriteString("://")
	b.WriteString(string(c.typ))
	b.WriteByte('/')
	b.WriteString(escape(c.label))

	b.WriteString("?secret=")
	b.WriteString(EncodeSecret(c.secret))

	if c.issuer != "" {
		b.WriteString("&issuer=")
		b.WriteString(escape(c.issuer))
	}
	if c.algorithm != DefaultAlgorithm {
		b.WriteString("&algorithm=")
		b.WriteString(string(c.algorithm))
	}
	if c.digits != DefaultDigits {
		b.WriteString("&digits=")
		b.WriteString(strconv.Itoa(c.digits))
	}

	switch c.typ {
	case TypeTOTP:
		if c.period != DefaultPeriod {
			b.WriteString("&period=")
			b.WriteString(strconv.Itoa(c.period))
		}
	case TypeHOTP:
		b.WriteString("&counter=")
		b.WriteString(strconv.FormatUint(c.counter, 10))
	}

	return b.String()
}

// ParseURI is the inverse of BuildURI.
func ParseURI(raw string) (Credential, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Credential{}, fmt.Errorf("%w; %w", ErrInvalidURI, err)
	}
	if u.Scheme != Scheme {
		return Credential{}, fmt.Errorf("%w: scheme %q", ErrInvalidURI, u.Scheme)
	}

	q := u.Query()

	secret, err := DecodeSecret(q.Get("secret"))
	if err != nil {
		return Credential{}, fmt.Errorf("%w; %w", ErrInvalidURI, err)
	}

	p := Params{
		Name:      strings.TrimPrefix(u.Path, "/"),
		Issuer:    q.Get("issuer"),
		Secret:    secret,
		Type:      Type(u.Host),
		Algorithm: Algorithm(q.Get("algorithm")),
	}

	if p.Digits, err = atoiParam(q, "digits"); err != nil {
		return Credential{}, err
	}
	if p.Period, err = atoiParam(q, "period"); err != nil {
		return Credential{}, err
	}
	if v := q.Get("counter"); v != "" {
		if p.Counter, err = strconv.ParseUint(v, 10, 64); err != nil {
			return Credential{}, fmt.Errorf("%w: counter %q", ErrInvalidURI, v)
		}
	}

	return NewCredential(p)
}

// EncodeSecret returns the unpadded Base32 form of a raw secret.
func EncodeSecret(secret []byte) string {
	return secretEncoding.EncodeToString(secret)
}

// DecodeSecret accepts Base32 text as typed by users and authenticator apps:
// case, embedded spaces or dashes and trailing padding are all tolerated.
func DecodeSecret(s string) ([]byte, error) {
	clean := strings.ToUpper(strings.Join(strings.Fields(s), ""))
	clean = strings.ReplaceAll(clean, "-", "")
	clean = strings.TrimRight(clean, "=")
	if clean == "" {
		return nil, ErrEmptySecret
	}

	secret, err := secretEncoding.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base32 secret; %w", err)
	}
	return secret, nil
}

func atoiParam(q url.Values, key string) (int, error) {
	v := q.Get(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrInvalidURI, key, v)
	}
	return n, nil
}

// escape percent-encodes everything outside the RFC 3986 unreserved set.
func escape(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}
