// Package otp models recovered one-time-password credentials and their
// otpauth:// key-provisioning URI form.
package otp

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Type is the one-time-password algorithm family.
type Type string

const (
	TypeTOTP Type = "totp"
	TypeHOTP Type = "hotp"
)

// Algorithm is the HMAC hash used to derive codes.
type Algorithm string

const (
	AlgorithmSHA1   Algorithm = "SHA1"
	AlgorithmSHA256 Algorithm = "SHA256"
	AlgorithmSHA512 Algorithm = "SHA512"
	AlgorithmMD5    Algorithm = "MD5"
)

// Implicit values a scanner assumes when the URI omits them.
const (
	DefaultType      = TypeTOTP
	DefaultAlgorithm = AlgorithmSHA1
	DefaultDigits    = 6
	DefaultPeriod    = 30
)

var (
	ErrEmptySecret      = errors.New("secret is empty")
	ErrEmptyLabel       = errors.New("label is empty")
	ErrInvalidType      = errors.New("invalid otp type")
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
	ErrInvalidDigits    = errors.New("invalid digit count")
	ErrInvalidPeriod    = errors.New("invalid period")
)

// Params holds the raw fields a Credential is built from. Zero values select
// the defaults.
type Params struct {
	Name      string
	Issuer    string
	Secret    []byte
	Type      Type
	Algorithm Algorithm
	Digits    int
	Period    int
	Counter   uint64
}

// Credential is a validated, immutable account secret.
type Credential struct {
	label     string
	issuer    string
	account   string
	secret    []byte
	typ       Type
	algorithm Algorithm
	digits    int
	period    int
	counter   uint64
}

// NewCredential validates p, applies defaults and resolves the display label.
//
// A name that already carries an "Issuer:" prefix is kept verbatim and supplies
// the issuer when none is given. Otherwise the label is "issuer:name".
func NewCredential(p Params) (Credential, error) {
	if len(p.Secret) == 0 {
		return Credential{}, ErrEmptySecret
	}

	typ := Type(strings.ToLower(strings.TrimSpace(string(p.Type))))
	if typ == "" {
		typ = DefaultType
	}
	if typ != TypeTOTP && typ != TypeHOTP {
		return Credential{}, fmt.Errorf("%w: %q", ErrInvalidType, p.Type)
	}

	alg, err := ParseAlgorithm(string(p.Algorithm))
	if err != nil {
		return Credential{}, err
	}

	digits := p.Digits
	if digits == 0 {
		digits = DefaultDigits
	}
	if digits < 6 || digits > 8 {
		return Credential{}, fmt.Errorf("%w: %d", ErrInvalidDigits, p.Digits)
	}

	period := 0
	counter := uint64(0)
	switch typ {
	case TypeTOTP:
		period = p.Period
		if period == 0 {
			period = DefaultPeriod
		}
		if period < 0 {
			return Credential{}, fmt.Errorf("%w: %d", ErrInvalidPeriod, p.Period)
		}
	case TypeHOTP:
		counter = p.Counter
	}

	label, issuer, account := resolveLabel(strings.TrimSpace(p.Name), strings.TrimSpace(p.Issuer))
	if label == "" {
		return Credential{}, ErrEmptyLabel
	}

	return Credential{
		label:     label,
		issuer:    issuer,
		account:   account,
		secret:    bytes.Clone(p.Secret),
		typ:       typ,
		algorithm: alg,
		digits:    digits,
		period:    period,
		counter:   counter,
	}, nil
}

// ParseAlgorithm normalizes an algorithm name. Empty input selects SHA1.
func ParseAlgorithm(s string) (Algorithm, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	name = strings.ReplaceAll(name, "-", "")
	switch Algorithm(name) {
	case "":
		return DefaultAlgorithm, nil
	case AlgorithmSHA1, AlgorithmSHA256, AlgorithmSHA512, AlgorithmMD5:
		return Algorithm(name), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAlgorithm, s)
	}
}

func resolveLabel(name, issuer string) (label, resolvedIssuer, account string) {
	if idx := strings.Index(name, ":"); idx > 0 {
		if issuer == "" {
			issuer = strings.TrimSpace(name[:idx])
		}
		return name, issuer, strings.TrimSpace(name[idx+1:])
	}

	switch {
	case issuer == "":
		return name, "", name
	case name == "" || name == issuer:
		return issuer, issuer, name
	default:
		return issuer + ":" + name, issuer, name
	}
}

// Label returns the human-readable "issuer:account" label.
func (c Credential) Label() string { return c.label }

// Issuer returns the issuer, or "" when the account has none.
func (c Credential) Issuer() string { return c.issuer }

// Account returns the account name without the issuer prefix.
func (c Credential) Account() string { return c.account }

// Secret returns a copy of the raw shared secret.
func (c Credential) Secret() []byte { return bytes.Clone(c.secret) }

// Type returns the OTP type.
func (c Credential) Type() Type { return c.typ }

// Algorithm returns the HMAC algorithm.
func (c Credential) Algorithm() Algorithm { return c.algorithm }

// Digits returns the code length.
func (c Credential) Digits() int { return c.digits }

// Period returns the TOTP step in seconds, 0 for HOTP.
func (c Credential) Period() int { return c.period }

// Counter returns the initial HOTP counter, 0 for TOTP.
func (c Credential) Counter() uint64 { return c.counter }

// Equal reports whether both credentials carry the same secret material and
// parameters.
func (c Credential) Equal(o Credential) bool {
	return c.label == o.label &&
		c.issuer == o.issuer &&
		bytes.Equal(c.secret, o.secret) &&
		c.typ == o.typ &&
		c.algorithm == o.algorithm &&
		c.digits == o.digits &&
		c.period == o.period &&
		c.counter == o.counter
}
