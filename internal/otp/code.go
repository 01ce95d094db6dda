package otp

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/xlzd/gotp"
)

// ErrCounterOutOfRange is returned by Code for an HOTP counter the code
// generator cannot represent.
var ErrCounterOutOfRange = errors.New("counter out of range")

// Code computes the code an authenticator app would show for c at the given
// time. For HOTP the time is ignored and the initial counter is used.
func (c Credential) Code(at time.Time) (string, error) {
	secret := EncodeSecret(c.secret)
	hasher := c.hasher()

	if c.typ == TypeHOTP {
		if c.counter > math.MaxInt64 {
			return "", fmt.Errorf("%w: %d", ErrCounterOutOfRange, c.counter)
		}
		return gotp.NewHOTP(secret, c.digits, hasher).At(int(c.counter)), nil
	}
	return gotp.NewTOTP(secret, c.digits, c.period, hasher).AtTime(at), nil
}

func (c Credential) hasher() *gotp.Hasher {
	switch c.algorithm {
	case AlgorithmSHA256:
		return &gotp.Hasher{HashName: "sha256", Digest: sha256.New}
	case AlgorithmSHA512:
		return &gotp.Hasher{HashName: "sha512", Digest: sha512.New}
	case AlgorithmMD5:
		return &gotp.Hasher{HashName: "md5", Digest: md5.New}
	default:
		return &gotp.Hasher{HashName: "sha1", Digest: sha1.New}
	}
}
