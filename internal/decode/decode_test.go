package decode

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strconv"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/leefowlercu/restore2fa/internal/otp"
	"github.com/leefowlercu/restore2fa/internal/storage"
	"github.com/leefowlercu/restore2fa/internal/testutil"
)

func packedRecord(ordinal int, key string, a testutil.PackedAccount) storage.RawRecord {
	return storage.RawRecord{Key: key, Ordinal: ordinal, Value: a.Marshal()}
}

func fieldRecord(ordinal int, field, value string) storage.RawRecord {
	return storage.RawRecord{
		Key:     "account." + strconv.Itoa(ordinal) + "." + field,
		Ordinal: ordinal,
		Field:   field,
		Value:   []byte(value),
	}
}

func googleSecret(t *testing.T) []byte {
	t.Helper()
	secret, err := otp.DecodeSecret("JBSWY3DPEHPK3PXP")
	if err != nil {
		t.Fatalf("DecodeSecret failed: %v", err)
	}
	return secret
}

func labels(creds []otp.Credential) []string {
	var out []string
	for _, c := range creds {
		out = append(out, c.Label())
	}
	return out
}

func requireCounts(t *testing.T, res Result, creds, skips int) {
	t.Helper()
	if len(res.Credentials) != creds || len(res.Skips) != skips {
		t.Fatalf("Decode() = %d credentials %v, %d skips %v; want %d credentials, %d skips",
			len(res.Credentials), labels(res.Credentials), len(res.Skips), res.Skips, creds, skips)
	}
}

func TestDecode_PackedGoogleAccount(t *testing.T) {
	res := Decode([]storage.RawRecord{
		packedRecord(1, "account.1", testutil.PackedAccount{
			Secret: googleSecret(t),
			Name:   "Google:alice@example.com",
			Type:   2,
			Digits: 1,
			Period: 30,
		}),
	})

	requireCounts(t, res, 1, 0)

	cred := res.Credentials[0]
	if got := cred.Label(); got != "Google:alice@example.com" {
		t.Errorf("Label() = %q, want %q", got, "Google:alice@example.com")
	}
	if got := cred.Issuer(); got != "Google" {
		t.Errorf("Issuer() = %q, want %q", got, "Google")
	}
	want := "otpauth://totp/Google%3Aalice%40example.com?secret=JBSWY3DPEHPK3PXP&issuer=Google"
	if got := otp.BuildURI(cred); got != want {
		t.Errorf("BuildURI() = %q, want %q", got, want)
	}
}

func TestDecode_TruncatedSiblingIsSkipped(t *testing.T) {
	good := packedRecord(1, "account.1", testutil.PackedAccount{Secret: googleSecret(t), Name: "alice"})

	full := testutil.PackedAccount{Secret: []byte("0123456789"), Name: "bob@example.com"}.Marshal()
	truncated := storage.RawRecord{Key: "account.2", Ordinal: 2, Value: full[:len(full)-3]}

	res := Decode([]storage.RawRecord{good, truncated})

	requireCounts(t, res, 1, 1)
	if got := res.Credentials[0].Label(); got != "alice" {
		t.Errorf("Label() = %q, want %q", got, "alice")
	}

	skip := res.Skips[0]
	if skip.Key != "account.2" || skip.Ordinal != 2 {
		t.Errorf("skip = {%q, %d}, want {account.2, 2}", skip.Key, skip.Ordinal)
	}
	if !errors.Is(skip, ErrMalformedRecord) {
		t.Errorf("skip reason = %v, want ErrMalformedRecord", skip.Reason)
	}
}

func TestDecode_PackedParameters(t *testing.T) {
	res := Decode([]storage.RawRecord{
		packedRecord(4, "account.4", testutil.PackedAccount{
			Secret:    []byte("12345678901234567890"),
			Name:      "bob",
			Issuer:    "ACME",
			Algorithm: 2,
			Digits:    2,
			Type:      1,
			Counter:   42,
		}),
	})

	requireCounts(t, res, 1, 0)

	cred := res.Credentials[0]
	if got := cred.Label(); got != "ACME:bob" {
		t.Errorf("Label() = %q, want %q", got, "ACME:bob")
	}
	if cred.Type() != otp.TypeHOTP {
		t.Errorf("Type() = %v, want %v", cred.Type(), otp.TypeHOTP)
	}
	if cred.Algorithm() != otp.AlgorithmSHA256 {
		t.Errorf("Algorithm() = %v, want %v", cred.Algorithm(), otp.AlgorithmSHA256)
	}
	if cred.Digits() != 8 {
		t.Errorf("Digits() = %d, want 8", cred.Digits())
	}
	if cred.Counter() != 42 {
		t.Errorf("Counter() = %d, want 42", cred.Counter())
	}
	if !bytes.Equal(cred.Secret(), []byte("12345678901234567890")) {
		t.Errorf("Secret() = %x, want %x", cred.Secret(), "12345678901234567890")
	}
}

func TestDecode_UnknownFieldsSkipped(t *testing.T) {
	var extra []byte
	extra = protowire.AppendTag(extra, 99, protowire.VarintType)
	extra = protowire.AppendVarint(extra, 12345)
	extra = protowire.AppendTag(extra, 100, protowire.BytesType)
	extra = protowire.AppendBytes(extra, []byte("opaque"))
	extra = protowire.AppendTag(extra, 101, protowire.Fixed32Type)
	extra = protowire.AppendFixed32(extra, 7)
	// known number with an unexpected wire type
	extra = protowire.AppendTag(extra, 2, protowire.VarintType)
	extra = protowire.AppendVarint(extra, 1)

	res := Decode([]storage.RawRecord{
		packedRecord(1, "account.1", testutil.PackedAccount{
			Secret: googleSecret(t),
			Name:   "carol",
			Extra:  extra,
		}),
	})

	requireCounts(t, res, 1, 0)
	if got := res.Credentials[0].Label(); got != "carol" {
		t.Errorf("Label() = %q, want %q", got, "carol")
	}
}

func TestDecode_PackedErrors(t *testing.T) {
	tests := []struct {
		name  string
		value []byte
		want  error
	}{
		{"missing secret", testutil.PackedAccount{Name: "x"}.Marshal(), ErrMissingSecret},
		{"bad algorithm enum", testutil.PackedAccount{Secret: []byte{1}, Name: "x", Algorithm: 9}.Marshal(), ErrInvalidField},
		{"bad digits enum", testutil.PackedAccount{Secret: []byte{1}, Name: "x", Digits: 3}.Marshal(), ErrInvalidField},
		{"bad type enum", testutil.PackedAccount{Secret: []byte{1}, Name: "x", Type: 5}.Marshal(), ErrInvalidField},
		{"invalid utf8 name", testutil.PackedAccount{Secret: []byte{1}, Name: "\xff\xfe"}.Marshal(), ErrInvalidField},
		{"bad tag", []byte{0x80}, ErrMalformedRecord},
		{"length past end", []byte{0x0a, 0x10, 0x01}, ErrMalformedRecord},
		{"zero field number", []byte{0x00, 0x01}, ErrMalformedRecord},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decode([]storage.RawRecord{{Key: "account.1", Ordinal: 1, Value: tt.value}})
			requireCounts(t, res, 0, 1)
			if !errors.Is(res.Skips[0], tt.want) {
				t.Errorf("skip reason = %v, want %v", res.Skips[0].Reason, tt.want)
			}
		})
	}
}

func TestDecode_DiscreteRecordsGroupedByOrdinal(t *testing.T) {
	res := Decode([]storage.RawRecord{
		fieldRecord(3, "email", "bob@example.com"),
		fieldRecord(5, "secret", "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"),
		fieldRecord(3, "secret", "jbsw y3dp ehpk 3pxp"),
		fieldRecord(3, "issuer", "ACME"),
		fieldRecord(5, "email", "counter-user"),
		fieldRecord(5, "type", "1"),
		fieldRecord(5, "counter", "17"),
		fieldRecord(5, "provider", "0"),
	})

	requireCounts(t, res, 2, 0)

	first := res.Credentials[0]
	if got := first.Label(); got != "ACME:bob@example.com" {
		t.Errorf("first Label() = %q, want %q", got, "ACME:bob@example.com")
	}
	if first.Type() != otp.TypeTOTP {
		t.Errorf("first Type() = %v, want %v", first.Type(), otp.TypeTOTP)
	}
	if !bytes.Equal(first.Secret(), googleSecret(t)) {
		t.Errorf("first Secret() = %x, want %x", first.Secret(), googleSecret(t))
	}

	second := res.Credentials[1]
	if got := second.Label(); got != "counter-user" {
		t.Errorf("second Label() = %q, want %q", got, "counter-user")
	}
	if second.Type() != otp.TypeHOTP {
		t.Errorf("second Type() = %v, want %v", second.Type(), otp.TypeHOTP)
	}
	if second.Counter() != 17 {
		t.Errorf("second Counter() = %d, want 17", second.Counter())
	}
}

func TestDecode_DiscretePrefersOriginalName(t *testing.T) {
	res := Decode([]storage.RawRecord{
		fieldRecord(1, "email", "renamed by user"),
		fieldRecord(1, "original_name", "Google:alice@example.com"),
		fieldRecord(1, "issuer", "Google"),
		fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP"),
		fieldRecord(1, "type", "0"),
	})

	requireCounts(t, res, 1, 0)
	if got := res.Credentials[0].Label(); got != "Google:alice@example.com" {
		t.Errorf("Label() = %q, want %q", got, "Google:alice@example.com")
	}
	if got := res.Credentials[0].Issuer(); got != "Google" {
		t.Errorf("Issuer() = %q, want %q", got, "Google")
	}
}

func TestDecode_DiscreteErrors(t *testing.T) {
	tests := []struct {
		name    string
		records []storage.RawRecord
		want    error
	}{
		{"no secret", []storage.RawRecord{fieldRecord(1, "email", "a")}, ErrMissingSecret},
		{"bad base32", []storage.RawRecord{fieldRecord(1, "secret", "not base32!")}, ErrInvalidField},
		{"bad type", []storage.RawRecord{fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP"), fieldRecord(1, "type", "7")}, ErrInvalidField},
		{"bad digits", []storage.RawRecord{fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP"), fieldRecord(1, "digits", "six")}, ErrInvalidField},
		{"out of range digits", []storage.RawRecord{fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP"), fieldRecord(1, "digits", "4")}, otp.ErrInvalidDigits},
		{"bad counter", []storage.RawRecord{fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP"), fieldRecord(1, "counter", "-1")}, ErrInvalidField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Decode(tt.records)
			requireCounts(t, res, 0, 1)
			if !errors.Is(res.Skips[0], tt.want) {
				t.Errorf("skip reason = %v, want %v", res.Skips[0].Reason, tt.want)
			}
			if res.Skips[0].Ordinal != 1 {
				t.Errorf("skip ordinal = %d, want 1", res.Skips[0].Ordinal)
			}
		})
	}
}

func TestDecode_PackedWinsOverDiscrete(t *testing.T) {
	res := Decode([]storage.RawRecord{
		fieldRecord(1, "secret", "GEZDGNBVGY3TQOJQ"),
		fieldRecord(1, "email", "discrete"),
		packedRecord(1, "account.1", testutil.PackedAccount{Secret: googleSecret(t), Name: "packed"}),
	})

	requireCounts(t, res, 1, 0)
	if got := res.Credentials[0].Label(); got != "packed" {
		t.Errorf("Label() = %q, want %q", got, "packed")
	}
}

func TestDecode_MalformedPackedFallsBackToDiscrete(t *testing.T) {
	res := Decode([]storage.RawRecord{
		{Key: "account.1", Ordinal: 1, Value: []byte{0x0a, 0x7f}},
		fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP"),
		fieldRecord(1, "email", "discrete"),
	})

	requireCounts(t, res, 1, 1)
	if got := res.Credentials[0].Label(); got != "discrete" {
		t.Errorf("Label() = %q, want %q", got, "discrete")
	}
	if res.Skips[0].Key != "account.1" {
		t.Errorf("skip key = %q, want %q", res.Skips[0].Key, "account.1")
	}
	if !errors.Is(res.Skips[0], ErrMalformedRecord) {
		t.Errorf("skip reason = %v, want ErrMalformedRecord", res.Skips[0].Reason)
	}
}

func TestDecode_BothLayoutsFail(t *testing.T) {
	res := Decode([]storage.RawRecord{
		{Key: "account.1", Ordinal: 1, Value: []byte{0x0a, 0x7f}},
		fieldRecord(1, "email", "no secret here"),
	})

	requireCounts(t, res, 0, 2)
	if !errors.Is(res.Skips[0], ErrMalformedRecord) {
		t.Errorf("first skip reason = %v, want ErrMalformedRecord", res.Skips[0].Reason)
	}
	if !errors.Is(res.Skips[1], ErrMissingSecret) {
		t.Errorf("second skip reason = %v, want ErrMissingSecret", res.Skips[1].Reason)
	}
	if res.Skips[1].Key != "account.1.email" {
		t.Errorf("second skip key = %q, want %q", res.Skips[1].Key, "account.1.email")
	}
}

func TestDecode_FallbackLabel(t *testing.T) {
	res := Decode([]storage.RawRecord{
		packedRecord(5, "account.5", testutil.PackedAccount{Secret: googleSecret(t)}),
	})

	requireCounts(t, res, 1, 0)
	if got := res.Credentials[0].Label(); got != "account-5" {
		t.Errorf("Label() = %q, want %q", got, "account-5")
	}
}

func TestDecode_OrderedByOrdinal(t *testing.T) {
	records := []storage.RawRecord{
		packedRecord(10, "account.10", testutil.PackedAccount{Secret: []byte{1}, Name: "ten"}),
		fieldRecord(2, "secret", "JBSWY3DPEHPK3PXP"),
		fieldRecord(2, "email", "two"),
		packedRecord(7, "account.7", testutil.PackedAccount{Secret: []byte{2}, Name: "seven"}),
	}

	res := Decode(records)
	requireCounts(t, res, 3, 0)

	want := []string{"two", "seven", "ten"}
	if got := labels(res.Credentials); !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}

	reversed := slices.Clone(records)
	slices.Reverse(reversed)

	again := Decode(reversed)
	requireCounts(t, again, 3, 0)
	for i := range res.Credentials {
		if !res.Credentials[i].Equal(again.Credentials[i]) {
			t.Errorf("credential %d differs after reordering input", i)
		}
	}
}

func TestDecode_SourcesNeverJoin(t *testing.T) {
	legacy := func(r storage.RawRecord) storage.RawRecord {
		r.Source = "accounts"
		return r
	}
	pref := func(r storage.RawRecord) storage.RawRecord {
		r.Source = "preferences"
		return r
	}

	res := Decode([]storage.RawRecord{
		legacy(fieldRecord(1, "email", "legacy@example.com")),
		pref(fieldRecord(1, "secret", "JBSWY3DPEHPK3PXP")),
		pref(fieldRecord(1, "issuer", "ACME")),
		legacy(fieldRecord(1, "secret", "GEZDGNBVGY3TQOJQ")),
		legacy(fieldRecord(1, "type", "1")),
		legacy(fieldRecord(1, "counter", "5")),
	})

	requireCounts(t, res, 2, 0)

	want := []string{"ACME", "legacy@example.com"}
	if got := labels(res.Credentials); !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
	if res.Credentials[0].Type() != otp.TypeTOTP {
		t.Errorf("preference Type() = %v, want %v", res.Credentials[0].Type(), otp.TypeTOTP)
	}
	if res.Credentials[1].Counter() != 5 {
		t.Errorf("legacy Counter() = %d, want 5", res.Credentials[1].Counter())
	}
}

func TestDecode_SkipNamesSource(t *testing.T) {
	rec := fieldRecord(2, "email", "no secret")
	rec.Source = "accounts"

	res := Decode([]storage.RawRecord{rec})

	requireCounts(t, res, 0, 1)
	if res.Skips[0].Source != "accounts" {
		t.Errorf("skip source = %q, want %q", res.Skips[0].Source, "accounts")
	}
	want := "record account.2.email in accounts skipped; missing secret"
	if got := res.Skips[0].Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func decodeStore(t *testing.T, path string) Result {
	t.Helper()

	s, err := storage.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()

	var records []storage.RawRecord
	for rec, err := range s.Records(context.Background()) {
		if err != nil {
			t.Fatalf("Records failed: %v", err)
		}
		records = append(records, rec)
	}
	return Decode(records)
}

func TestDecode_LegacyIDsMatchingPreferenceOrdinals(t *testing.T) {
	path := testutil.CreateMixedDB(t, filepath.Join(t.TempDir(), "databases"),
		[]testutil.Preference{
			{Key: "account.1", Value: testutil.PackedAccount{Secret: googleSecret(t), Name: "packed@example.com"}.Marshal()},
			{Key: "account.2.secret", Value: []byte("JBSWY3DPEHPK3PXP")},
			{Key: "account.2.email", Value: []byte("discrete@example.com")},
		},
		[]testutil.LegacyAccount{
			{ID: 1, Email: "legacy-one@example.com", Secret: "GEZDGNBVGY3TQOJQ"},
			{ID: 2, Email: "legacy-two@example.com", Secret: "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ", Issuer: "Legacy"},
		})

	res := decodeStore(t, path)
	requireCounts(t, res, 4, 0)

	want := []string{"packed@example.com", "discrete@example.com", "legacy-one@example.com", "Legacy:legacy-two@example.com"}
	if got := labels(res.Credentials); !slices.Equal(got, want) {
		t.Errorf("labels = %v, want %v", got, want)
	}
}

func TestDecode_LegacyAccountNotMergedIntoDiscrete(t *testing.T) {
	path := testutil.CreateMixedDB(t, filepath.Join(t.TempDir(), "databases"),
		[]testutil.Preference{
			{Key: "account.1.secret", Value: []byte("JBSWY3DPEHPK3PXP")},
			{Key: "account.1.issuer", Value: []byte("ACME")},
		},
		[]testutil.LegacyAccount{
			{ID: 1, Email: "legacy@example.com", Secret: "GEZDGNBVGY3TQOJQ", Issuer: "Legacy", Type: 1, Counter: 5},
		})

	res := decodeStore(t, path)
	requireCounts(t, res, 2, 0)

	pref, legacy := res.Credentials[0], res.Credentials[1]
	if got := pref.Label(); got != "ACME" {
		t.Errorf("preference Label() = %q, want %q", got, "ACME")
	}
	if pref.Type() != otp.TypeTOTP {
		t.Errorf("preference Type() = %v, want %v", pref.Type(), otp.TypeTOTP)
	}
	if !bytes.Equal(pref.Secret(), googleSecret(t)) {
		t.Errorf("preference Secret() = %x, want %x", pref.Secret(), googleSecret(t))
	}

	if got := legacy.Label(); got != "Legacy:legacy@example.com" {
		t.Errorf("legacy Label() = %q, want %q", got, "Legacy:legacy@example.com")
	}
	if legacy.Type() != otp.TypeHOTP || legacy.Counter() != 5 {
		t.Errorf("legacy = %v counter %d, want %v counter 5", legacy.Type(), legacy.Counter(), otp.TypeHOTP)
	}
	if want, _ := otp.DecodeSecret("GEZDGNBVGY3TQOJQ"); !bytes.Equal(legacy.Secret(), want) {
		t.Errorf("legacy Secret() = %x, want %x", legacy.Secret(), want)
	}
}

func TestDecode_Empty(t *testing.T) {
	res := Decode(nil)
	requireCounts(t, res, 0, 0)
}
