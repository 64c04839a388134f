// Package sqldb stores records in a relational database through
// database/sql. SQLite (modernc.org/sqlite) and PostgreSQL (pgx) are
// supported.
package sqldb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/domain/interfaces"
	_ "modernc.org/sqlite"
)

// ErrNotFound is wrapped when a row does not exist
var ErrNotFound = interfaces.ErrNotFound

// Supported database/sql driver names
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

var sqlitePragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA synchronous = NORMAL",
}

type dialect struct {
	driver   string
	serial   string
	numbered bool
}

func (d dialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			seq          ` + d.serial + `,
			id           TEXT NOT NULL UNIQUE,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			target_count INTEGER NOT NULL DEFAULT 0,
			is_archived  BOOLEAN NOT NULL DEFAULT FALSE,
			created_at   BIGINT NOT NULL,
			updated_at   BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS submissions (
			seq            ` + d.serial + `,
			id             TEXT NOT NULL UNIQUE,
			session_id     TEXT NOT NULL,
			respondent_job TEXT NOT NULL DEFAULT '',
			answers        TEXT NOT NULL,
			score          INTEGER NOT NULL,
			level          TEXT NOT NULL,
			created_at     BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_session ON submissions (session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS feedbacks (
			seq           ` + d.serial + `,
			id            TEXT NOT NULL UNIQUE,
			session_id    TEXT NOT NULL,
			submission_id TEXT NOT NULL DEFAULT '',
			rating        INTEGER,
			comment       TEXT NOT NULL DEFAULT '',
			job           TEXT NOT NULL DEFAULT '',
			score         INTEGER,
			answers       TEXT,
			created_at    BIGINT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_feedbacks_session ON feedbacks (session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS audit_logs (
			seq        ` + d.serial + `,
			id         TEXT NOT NULL UNIQUE,
			actor      TEXT NOT NULL,
			action     TEXT NOT NULL,
			metadata   TEXT,
			created_at BIGINT NOT NULL
		)`,
	}
}

// rebind rewrites ? placeholders into $N for drivers that need it.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func dialectFor(driver string) (dialect, error) {
	switch driver {
	case DriverSQLite:
		return dialect{driver: driver, serial: "INTEGER PRIMARY KEY AUTOINCREMENT"}, nil
	case DriverPostgres:
		return dialect{driver: driver, serial: "BIGSERIAL PRIMARY KEY", numbered: true}, nil
	default:
		return dialect{}, goerr.New("unsupported SQL driver", goerr.V("driver", driver))
	}
}

type DB struct {
	db         *sql.DB
	dialect    dialect
	session    *sessionRepository
	submission *submissionRepository
	feedback   *feedbackRepository
	auditLog   *auditLogRepository
}

var _ interfaces.Repository = &DB{}

// New opens the database and creates the schema when missing.
func New(ctx context.Context, driver, dsn string) (*DB, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("driver", driver))
	}

	if driver == DriverSQLite {
		// Pragmas are per connection.
		db.SetMaxOpenConns(1)
		for _, p := range sqlitePragmas {
			if _, err := db.ExecContext(ctx, p); err != nil {
				_ = db.Close()
				return nil, goerr.Wrap(err, "failed to apply pragma", goerr.V("pragma", p))
			}
		}
	}

	for _, stmt := range d.schema() {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, goerr.Wrap(err, "failed to create schema", goerr.V("driver", driver))
		}
	}

	x := &DB{db: db, dialect: d}
	x.session = &sessionRepository{db: x}
	x.submission = &submissionRepository{db: x}
	x.feedback = &feedbackRepository{db: x}
	x.auditLog = &auditLogRepository{db: x}
	return x, nil
}

func (x *DB) Session() interfaces.SessionRepository {
	return x.session
}

func (x *DB) Submission() interfaces.SubmissionRepository {
	return x.submission
}

func (x *DB) Feedback() interfaces.FeedbackRepository {
	return x.feedback
}

func (x *DB) AuditLog() interfaces.AuditLogRepository {
	return x.auditLog
}

func (x *DB) Close() error {
	return x.db.Close()
}

func (x *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return x.db.ExecContext(ctx, x.dialect.rebind(query), args...)
}

func (x *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return x.db.QueryContext(ctx, x.dialect.rebind(query), args...)
}

func (x *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return x.db.QueryRowContext(ctx, x.dialect.rebind(query), args...)
}

func toUnix(t time.Time) int64 {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().UnixNano()
}

func fromUnix(n int64) time.Time {
	return time.Unix(0, n).UTC()
}
