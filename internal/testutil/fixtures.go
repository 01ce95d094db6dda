package testutil

import (
	"archive/tar"
	"compress/gzip"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"

	_ "modernc.org/sqlite"
)

// StorageEntry is where backup tools place the authenticator database inside
// an app-data archive.
const StorageEntry = "data/data/com.google.android.apps.authenticator2/databases/databases"

// PackedAccount is a fixture for a packed account record. Enum fields use the
// wire values: Algorithm 1 SHA1, 2 SHA256, 3 SHA512, 4 MD5; Digits 1 six,
// 2 eight; Type 1 HOTP, 2 TOTP.
type PackedAccount struct {
	Secret    []byte
	Name      string
	Issuer    string
	Algorithm uint64
	Digits    uint64
	Type      uint64
	Counter   uint64
	Period    uint64

	// Extra is appended verbatim, for unknown fields or corruption.
	Extra []byte
}

// Marshal encodes the account in protobuf wire format. Zero fields are omitted.
func (a PackedAccount) Marshal() []byte {
	var b []byte
	if len(a.Secret) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, a.Secret)
	}
	if a.Name != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, a.Name)
	}
	if a.Issuer != "" {
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendString(b, a.Issuer)
	}
	for _, f := range []struct {
		num protowire.Number
		val uint64
	}{
		{4, a.Algorithm},
		{5, a.Digits},
		{6, a.Type},
		{7, a.Counter},
		{8, a.Period},
	} {
		if f.val != 0 {
			b = protowire.AppendTag(b, f.num, protowire.VarintType)
			b = protowire.AppendVarint(b, f.val)
		}
	}
	return append(b, a.Extra...)
}

// Preference is one key/value row of the preference table.
type Preference struct {
	Key   string
	Value []byte
}

// LegacyAccount is one row of the legacy accounts table.
type LegacyAccount struct {
	ID           int
	Email        string
	Secret       string
	Counter      int
	Type         int
	Issuer       string
	OriginalName string
}

// CreatePreferencesDB writes a SQLite database at path with a "preferences"
// table holding rows, plus an unrelated table that must be ignored.
func CreatePreferencesDB(t *testing.T, path string, rows []Preference) string {
	t.Helper()

	db := openFixtureDB(t, path)
	defer db.Close()

	mustExec(t, db, `CREATE TABLE preferences (key TEXT PRIMARY KEY, value BLOB)`)
	mustExec(t, db, `CREATE TABLE android_metadata (locale TEXT)`)
	mustExec(t, db, `INSERT INTO android_metadata (locale) VALUES ('en_US')`)

	for _, r := range rows {
		mustExec(t, db, `INSERT INTO preferences (key, value) VALUES (?, ?)`, r.Key, r.Value)
	}

	return path
}

// SampleSecret is the base32 secret shared by the sample accounts.
const SampleSecret = "JBSWY3DPEHPK3PXP"

// SampleLabels are the labels recovered from CreateSampleDB, in order.
var SampleLabels = []string{"Google:alice@example.com", "ACME:bob"}

// CreateSampleDB writes a preferences database with one packed account, one
// split account and one truncated record that fails to decode.
func CreateSampleDB(t *testing.T, path string) string {
	t.Helper()

	secret := []byte("Hello!\xde\xad\xbe\xef")
	packed := PackedAccount{Secret: secret, Name: SampleLabels[0], Type: 2, Digits: 1, Period: 30}.Marshal()
	broken := PackedAccount{Secret: []byte("0123456789"), Name: "carol@example.com"}.Marshal()

	return CreatePreferencesDB(t, path, []Preference{
		{Key: "account.1", Value: packed},
		{Key: "account.2.secret", Value: []byte(SampleSecret)},
		{Key: "account.2.email", Value: []byte("bob")},
		{Key: "account.2.issuer", Value: []byte("ACME")},
		{Key: "account.3", Value: broken[:len(broken)-3]},
	})
}

// CreateLegacyDB writes a SQLite database at path with the legacy accounts
// table layout.
func CreateLegacyDB(t *testing.T, path string, accounts []LegacyAccount) string {
	t.Helper()

	db := openFixtureDB(t, path)
	defer db.Close()

	createLegacyTable(t, db, accounts)
	return path
}

// CreateMixedDB writes a SQLite database at path holding both the preference
// table and the legacy accounts table.
func CreateMixedDB(t *testing.T, path string, rows []Preference, accounts []LegacyAccount) string {
	t.Helper()

	CreatePreferencesDB(t, path, rows)

	db := openFixtureDB(t, path)
	defer db.Close()

	createLegacyTable(t, db, accounts)
	return path
}

func createLegacyTable(t *testing.T, db *sql.DB, accounts []LegacyAccount) {
	t.Helper()

	mustExec(t, db, `CREATE TABLE accounts (
		_id INTEGER PRIMARY KEY,
		email TEXT NOT NULL,
		secret TEXT NOT NULL,
		counter INTEGER DEFAULT 0,
		type INTEGER,
		provider INTEGER DEFAULT 0,
		issuer TEXT DEFAULT NULL,
		original_name TEXT DEFAULT NULL
	)`)

	for _, a := range accounts {
		mustExec(t, db,
			`INSERT INTO accounts (_id, email, secret, counter, type, issuer, original_name) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.Email, a.Secret, a.Counter, a.Type, nullString(a.Issuer), nullString(a.OriginalName))
	}
}

// CreateSQLiteDB writes a SQLite database at path by running stmts in order.
func CreateSQLiteDB(t *testing.T, path string, stmts ...string) string {
	t.Helper()

	db := openFixtureDB(t, path)
	defer db.Close()

	for _, s := range stmts {
		mustExec(t, db, s)
	}
	return path
}

// TarEntry is one member of a fixture archive. A nil Body with Dir set
// creates a directory entry.
type TarEntry struct {
	Name string
	Body []byte
	Dir  bool
}

// CreateTarGz writes a gzip-compressed tar archive at path.
func CreateTarGz(t *testing.T, path string, entries []TarEntry) string {
	t.Helper()

	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create archive %s: %v", path, err)
	}
	defer f.Close()

	zw := gzip.NewWriter(f)
	tw := tar.NewWriter(zw)

	for _, e := range entries {
		hdr := &tar.Header{Name: e.Name, Mode: 0600, Size: int64(len(e.Body)), Typeflag: tar.TypeReg}
		if e.Dir {
			hdr = &tar.Header{Name: e.Name, Mode: 0700, Typeflag: tar.TypeDir}
		}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header %s: %v", e.Name, err)
		}
		if !e.Dir {
			if _, err := tw.Write(e.Body); err != nil {
				t.Fatalf("failed to write tar entry %s: %v", e.Name, err)
			}
		}
	}

	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return path
}

// CreateBackupArchive packs the database file at dbPath into a backup-style
// archive at path under StorageEntry.
func CreateBackupArchive(t *testing.T, path, dbPath string) string {
	t.Helper()

	data, err := os.ReadFile(dbPath)
	if err != nil {
		t.Fatalf("failed to read database %s: %v", dbPath, err)
	}

	return CreateTarGz(t, path, []TarEntry{
		{Name: filepath.Dir(StorageEntry) + "/", Dir: true},
		{Name: StorageEntry, Body: data},
		{Name: "data/data/com.google.android.apps.authenticator2/shared_prefs/prefs.xml", Body: []byte("<map/>")},
	})
}

func openFixtureDB(t *testing.T, path string) *sql.DB {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("failed to create fixture dir: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open fixture database %s: %v", path, err)
	}
	return db
}

func mustExec(t *testing.T, db *sql.DB, query string, args ...any) {
	t.Helper()
	if _, err := db.Exec(query, args...); err != nil {
		t.Fatalf("failed to exec %q: %v", query, err)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
