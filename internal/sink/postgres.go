package sink

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"cdm-mapper/internal/cdm"
	"cdm-mapper/internal/coerce"
	"cdm-mapper/internal/common"
	"cdm-mapper/internal/frame"
)

// Conn is the subset of *pgx.Conn used by the Postgres sink.
type Conn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, table pgx.Identifier, columns []string, src pgx.CopyFromSource) (int64, error)
}

// PostgresOptions configures the Postgres sink.
type PostgresOptions struct {
	// Schema is the target schema; empty uses the search path.
	Schema string
	// Truncate empties each table before copying into it.
	Truncate bool
	// Model provides column types so date columns are sent as timestamps.
	Model  *cdm.Model
	Logger *zap.Logger
}

// Postgres copies tables into a PostgreSQL database with an existing CDM
// schema.
type Postgres struct {
	conn Conn
	opts PostgresOptions
}

// NewPostgres creates a sink on an open connection.
func NewPostgres(conn Conn, opts PostgresOptions) *Postgres {
	if opts.Model == nil {
		opts.Model = cdm.Default()
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Postgres{conn: conn, opts: opts}
}

// ConnectPostgres opens a connection and creates a sink on it. The caller
// closes the returned connection.
func ConnectPostgres(ctx context.Context, url string, opts PostgresOptions) (*Postgres, *pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, url)
	if err != nil {
		return nil, nil, errors.Wrap(err, "connecting to postgres")
	}

	return NewPostgres(conn, opts), conn, nil
}

func (p *Postgres) identifier(table string) pgx.Identifier {
	if p.opts.Schema == "" {
		return pgx.Identifier{table}
	}

	return pgx.Identifier{p.opts.Schema, table}
}

// Write copies all rows of f into the table.
func (p *Postgres) Write(ctx context.Context, table string, f *frame.Frame) error {
	if f.Empty() {
		return nil
	}

	ident := p.identifier(table)

	if p.opts.Truncate {
		if _, err := p.conn.Exec(ctx, "TRUNCATE TABLE "+ident.Sanitize()); err != nil {
			return errors.Wrapf(err, "truncating %s", ident.Sanitize())
		}
	}

	rows, err := p.rows(table, f)
	if err != nil {
		return err
	}

	n, err := p.conn.CopyFrom(ctx, ident, f.Columns(), pgx.CopyFromRows(rows))
	if err != nil {
		return errors.Wrapf(err, "copying into %s", ident.Sanitize())
	}

	p.opts.Logger.Info("copied table", zap.String("table", ident.Sanitize()), zap.Int64("rows", n))

	return nil
}

// rows converts the frame into COPY rows. Date and datetime columns are
// rendered as strings by the formatter and parsed back into time.Time.
func (p *Postgres) rows(table string, f *frame.Frame) ([][]any, error) {
	schema, err := p.opts.Model.Table(table)
	if err != nil {
		return nil, err
	}

	columns := f.Columns()
	temporal := make([]bool, len(columns))

	for i, name := range columns {
		if c, ok := schema.Column(name); ok {
			temporal[i] = c.Type == cdm.Date || c.Type == cdm.DateTime
		}
	}

	rows := make([][]any, f.Len())
	for r := range rows {
		row := f.Row(r)
		for i, v := range row {
			if temporal[i] {
				row[i] = toTime(v)
			}
		}

		rows[r] = row
	}

	return rows, nil
}

func toTime(v any) any {
	if common.IsNull(v) {
		return nil
	}

	t, reason := coerce.ParseTime(v)
	if reason != coerce.ReasonNone {
		return nil
	}

	return t.UTC().Truncate(time.Second)
}
