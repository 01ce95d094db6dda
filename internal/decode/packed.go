package decode

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/leefowlercu/restore2fa/internal/otp"
)

// Packed account field numbers.
const (
	fieldSecret    protowire.Number = 1
	fieldName      protowire.Number = 2
	fieldIssuer    protowire.Number = 3
	fieldAlgorithm protowire.Number = 4
	fieldDigits    protowire.Number = 5
	fieldType      protowire.Number = 6
	fieldCounter   protowire.Number = 7
	fieldPeriod    protowire.Number = 8
)

var packedAlgorithms = map[uint64]otp.Algorithm{
	0: "",
	1: otp.AlgorithmSHA1,
	2: otp.AlgorithmSHA256,
	3: otp.AlgorithmSHA512,
	4: otp.AlgorithmMD5,
}

var packedDigits = map[uint64]int{
	0: 0,
	1: 6,
	2: 8,
}

var packedTypes = map[uint64]otp.Type{
	0: "",
	1: otp.TypeHOTP,
	2: otp.TypeTOTP,
}

// decodePacked walks the wire encoding of one packed account. Fields with an
// unknown number or an unexpected wire type are skipped.
func decodePacked(b []byte) (otp.Params, error) {
	var p otp.Params

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return otp.Params{}, fmt.Errorf("%w: tag; %w", ErrMalformedRecord, protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && (num == fieldSecret || num == fieldName || num == fieldIssuer):
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return otp.Params{}, fmt.Errorf("%w: field %d; %w", ErrMalformedRecord, num, protowire.ParseError(n))
			}
			b = b[n:]

			if num == fieldSecret {
				p.Secret = bytes.Clone(v)
				continue
			}
			if !utf8.Valid(v) {
				return otp.Params{}, fmt.Errorf("%w: field %d is not valid UTF-8", ErrInvalidField, num)
			}
			if num == fieldName {
				p.Name = string(v)
			} else {
				p.Issuer = string(v)
			}

		case typ == protowire.VarintType && num >= fieldAlgorithm && num <= fieldPeriod:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return otp.Params{}, fmt.Errorf("%w: field %d; %w", ErrMalformedRecord, num, protowire.ParseError(n))
			}
			b = b[n:]

			if err := setPackedVarint(&p, num, v); err != nil {
				return otp.Params{}, err
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return otp.Params{}, fmt.Errorf("%w: field %d; %w", ErrMalformedRecord, num, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}

	if len(p.Secret) == 0 {
		return otp.Params{}, ErrMissingSecret
	}
	return p, nil
}

func setPackedVarint(p *otp.Params, num protowire.Number, v uint64) error {
	var ok bool

	switch num {
	case fieldAlgorithm:
		p.Algorithm, ok = packedAlgorithms[v]
	case fieldDigits:
		p.Digits, ok = packedDigits[v]
	case fieldType:
		p.Type, ok = packedTypes[v]
	case fieldCounter:
		p.Counter, ok = v, true
	case fieldPeriod:
		if ok = v <= math.MaxInt32; ok {
			p.Period = int(v)
		}
	}

	if !ok {
		return fmt.Errorf("%w: field %d value %d", ErrInvalidField, num, v)
	}
	return nil
}
