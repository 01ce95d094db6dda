// Package storage reads authenticator records out of an app's private SQLite
// database. The file is opened read-only and never modified.
package storage

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"

	_ "modernc.org/sqlite"
)

// Default layout constants. The authenticator's storage format is versioned and
// not self-describing, so these are configuration rather than discovered.
const (
	DefaultTable       = "preferences"
	DefaultLegacyTable = "accounts"
	DefaultKeyPrefix   = "account"
)

// sqliteHeader is the magic string at offset 0 of every SQLite 3 file.
var sqliteHeader = []byte("SQLite format 3\x00")

// schemaQuery lists every (table, column) pair in the database.
const schemaQuery = `SELECT m.name, p.name FROM sqlite_master AS m JOIN pragma_table_info(m.name) AS p WHERE m.type = 'table'`

// RawRecord is one keyed value read from the store.
//
// Keys follow "<prefix>.<ordinal>" for a packed account and
// "<prefix>.<ordinal>.<field>" for one field of a split account. Ordinal and
// Field are the key split for grouping; the value is left uninterpreted.
// Source names the table the record was read from. Ordinals are only unique
// within one source.
type RawRecord struct {
	Source  string
	Key     string
	Ordinal int
	Field   string
	Value   []byte
}

// Packed reports whether the record holds a whole account in one value.
func (r RawRecord) Packed() bool {
	return r.Field == ""
}

type options struct {
	table       string
	legacyTable string
	keyPrefix   string
	logger      *slog.Logger
}

// Option configures Open.
type Option func(*options)

// WithTable sets the key/value preference table name.
func WithTable(name string) Option {
	return func(o *options) {
		o.table = name
	}
}

// WithLegacyTable sets the legacy one-row-per-account table name.
func WithLegacyTable(name string) Option {
	return func(o *options) {
		o.legacyTable = name
	}
}

// WithKeyPrefix sets the key prefix shared by all account records.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Store is an open, read-only authenticator database.
type Store struct {
	db         *sql.DB
	path       string
	opts       options
	keyPattern *regexp.Regexp
	hasTable   bool
	hasLegacy  bool
	consumed   atomic.Bool
}

// Open validates path and opens it read-only. A missing, empty or non-SQLite
// file, or one without any known authenticator table, fails with an error
// matching ErrDatabaseUnrecognized.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if err := checkFile(path); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", readOnlyDSN(path))
	if err != nil {
		return nil, NewUnrecognizedError(path, "failed to open database", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, NewUnrecognizedError(path, "failed to connect", err)
	}

	s, err := newStore(ctx, db, path, opts...)
	if err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func newStore(ctx context.Context, db *sql.DB, path string, opts ...Option) (*Store, error) {
	o := options{
		table:       DefaultTable,
		legacyTable: DefaultLegacyTable,
		keyPrefix:   DefaultKeyPrefix,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Store{
		db:         db,
		path:       path,
		opts:       o,
		keyPattern: regexp.MustCompile(`^` + regexp.QuoteMeta(o.keyPrefix) + `\.(\d+)(?:\.([A-Za-z0-9_]+))?$`),
	}

	columns, err := s.schema(ctx)
	if err != nil {
		return nil, NewUnrecognizedError(path, "failed to read schema", err)
	}

	s.hasTable = hasColumns(columns[strings.ToLower(o.table)], "key", "value")
	s.hasLegacy = hasColumns(columns[strings.ToLower(o.legacyTable)], "_id", "secret")

	if !s.hasTable && !s.hasLegacy {
		return nil, NewUnrecognizedError(path,
			fmt.Sprintf("no %q or %q table found", o.table, o.legacyTable), nil)
	}

	o.logger.Debug("storage opened",
		"path", path,
		"preference_table", s.hasTable,
		"legacy_table", s.hasLegacy)

	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Tables returns the recognized tables that Records will read.
func (s *Store) Tables() []string {
	var tables []string
	if s.hasTable {
		tables = append(tables, s.opts.table)
	}
	if s.hasLegacy {
		tables = append(tables, s.opts.legacyTable)
	}
	return tables
}

// Records returns a single-pass sequence of the account records in the store.
// Rows from the preference table come first, then rows projected from the
// legacy table. Keys outside the naming convention are ignored. A query
// failure is yielded as an error matching ErrDatabaseUnrecognized and ends
// the sequence. Calling Records again yields ErrConsumed.
func (s *Store) Records(ctx context.Context) iter.Seq2[RawRecord, error] {
	return func(yield func(RawRecord, error) bool) {
		if s.consumed.Swap(true) {
			yield(RawRecord{}, ErrConsumed)
			return
		}

		if s.hasTable && !s.scanPreferences(ctx, yield) {
			return
		}
		if s.hasLegacy {
			s.scanLegacy(ctx, yield)
		}
	}
}

func (s *Store) scanPreferences(ctx context.Context, yield func(RawRecord, error) bool) bool {
	query := fmt.Sprintf(`SELECT "key", "value" FROM %s ORDER BY "key"`, quoteIdent(s.opts.table))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to query preference table", err))
		return false
	}
	defer rows.Close()

	for rows.Next() {
		var key sql.NullString
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to scan preference row", err))
			return false
		}

		rec, ok := s.record(s.opts.table, key.String, value)
		if !ok {
			s.opts.logger.Debug("ignoring preference outside key convention", "key", key.String)
			continue
		}
		if !yield(rec, nil) {
			return false
		}
	}

	if err := rows.Err(); err != nil {
		yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to read preference table", err))
		return false
	}

	return true
}

// scanLegacy projects each legacy account row into one record per non-null
// column, keyed "<prefix>.<_id>.<column>".
func (s *Store) scanLegacy(ctx context.Context, yield func(RawRecord, error) bool) bool {
	query := fmt.Sprintf(`SELECT * FROM %s ORDER BY "_id"`, quoteIdent(s.opts.legacyTable))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to query legacy table", err))
		return false
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to read legacy columns", err))
		return false
	}

	idIdx := -1
	for i, c := range columns {
		columns[i] = strings.ToLower(c)
		if columns[i] == "_id" {
			idIdx = i
		}
	}
	if idIdx < 0 {
		yield(RawRecord{}, NewUnrecognizedError(s.path, "legacy table has no _id column", nil))
		return false
	}

	values := make([]any, len(columns))
	ptrs := make([]any, len(columns))
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to scan legacy row", err))
			return false
		}

		id := string(columnBytes(values[idIdx]))
		for i, col := range columns {
			if i == idIdx || values[i] == nil {
				continue
			}

			rec, ok := s.record(s.opts.legacyTable, fmt.Sprintf("%s.%s.%s", s.opts.keyPrefix, id, col), columnBytes(values[i]))
			if !ok {
				s.opts.logger.Debug("ignoring legacy column outside key convention", "id", id, "column", col)
				continue
			}
			if !yield(rec, nil) {
				return false
			}
		}
	}

	if err := rows.Err(); err != nil {
		yield(RawRecord{}, NewUnrecognizedError(s.path, "failed to read legacy table", err))
		return false
	}

	return true
}

func (s *Store) record(source, key string, value []byte) (RawRecord, bool) {
	m := s.keyPattern.FindStringSubmatch(key)
	if m == nil {
		return RawRecord{}, false
	}

	ordinal, err := strconv.Atoi(m[1])
	if err != nil {
		return RawRecord{}, false
	}

	return RawRecord{
		Source:  source,
		Key:     key,
		Ordinal: ordinal,
		Field:   strings.ToLower(m[2]),
		Value:   value,
	}, true
}

func (s *Store) schema(ctx context.Context) (map[string][]string, error) {
	rows, err := s.db.QueryContext(ctx, schemaQuery)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string][]string)
	for rows.Next() {
		var table, column string
		if err := rows.Scan(&table, &column); err != nil {
			return nil, err
		}
		table = strings.ToLower(table)
		columns[table] = append(columns[table], strings.ToLower(column))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for table := range columns {
		sort.Strings(columns[table])
	}
	return columns, nil
}

// checkFile rejects paths that cannot hold a SQLite database before the
// driver gets a chance to create or misread them.
func checkFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return NewUnrecognizedError(path, "failed to stat file", err)
	}
	if info.IsDir() {
		return NewUnrecognizedError(path, "path is a directory", nil)
	}
	if info.Size() == 0 {
		return NewUnrecognizedError(path, "file is empty", nil)
	}

	f, err := os.Open(path)
	if err != nil {
		return NewUnrecognizedError(path, "failed to open file", err)
	}
	defer f.Close()

	header := make([]byte, len(sqliteHeader))
	if _, err := io.ReadFull(f, header); err != nil {
		return NewUnrecognizedError(path, "file too short", err)
	}
	if !bytes.Equal(header, sqliteHeader) {
		return NewUnrecognizedError(path, "not a SQLite 3 database", nil)
	}

	return nil
}

func readOnlyDSN(path string) string {
	u := url.URL{
		Scheme:   "file",
		Path:     path,
		RawQuery: "mode=ro&_pragma=query_only(1)",
	}
	return u.String()
}

func hasColumns(have []string, want ...string) bool {
	for _, w := range want {
		i := sort.SearchStrings(have, w)
		if i >= len(have) || have[i] != w {
			return false
		}
	}
	return true
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnBytes(v any) []byte {
	switch v := v.(type) {
	case nil:
		return nil
	case []byte:
		return bytes.Clone(v)
	case string:
		return []byte(v)
	default:
		return fmt.Append(nil, v)
	}
}
