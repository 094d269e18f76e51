// Package dbconn opens the instrumented postgres handle shared by the ingest
// and migration commands.
package dbconn

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
	"go.opentelemetry.io/otel/attribute"
)

const (
	pingTimeout          = 10 * time.Second
	maxTracedQueryLength = 512
	binaryResultParam    = "disable_prepared_binary_result"
)

var (
	queryWhitespace = regexp.MustCompile(`\s+`)
	// values lists of multi-row inserts: "VALUES ($1, $2), ($3, $4)".
	valueTuples = regexp.MustCompile(`VALUES (\([^()]*\))(?:, \([^()]*\))+`)
)

// Open connects to dsn through otelsqlx and pings it.
func Open(ctx context.Context, dsn string, disablePreparedBinary bool) (*sqlx.DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("db url cannot be empty")
	}

	db, err := otelsqlx.Open("postgres", NormalizeURL(dsn, disablePreparedBinary),
		otelsql.WithAttributes(attribute.String("db.system", "postgresql")),
		otelsql.WithDBName(NameFromURL(dsn)),
		otelsql.WithQueryFormatter(FormatQueryForTrace),
	)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}

// NormalizeURL adds disable_prepared_binary_result=yes for poolers that
// cannot handle binary results. An explicit value in raw is kept.
func NormalizeURL(raw string, disablePreparedBinary bool) string {
	if !disablePreparedBinary {
		return raw
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" {
		return raw
	}

	query := parsed.Query()
	if query.Has(binaryResultParam) {
		return raw
	}
	query.Set(binaryResultParam, "yes")
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// NameFromURL returns the database name of a URL or key=value DSN.
func NameFromURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if parsed, err := url.Parse(raw); err == nil && parsed.Scheme != "" {
		if name := strings.Trim(parsed.Path, "/ "); name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(raw) {
		if name, ok := strings.CutPrefix(token, "dbname="); ok {
			if name = strings.Trim(name, `"'`); name != "" {
				return name
			}
		}
	}
	return ""
}

// FormatQueryForTrace collapses whitespace, reduces multi-row VALUES lists to
// their first tuple and caps the length of span statements.
func FormatQueryForTrace(query string) string {
	query = queryWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	query = valueTuples.ReplaceAllStringFunc(query, func(values string) string {
		first := valueTuples.FindStringSubmatch(values)[1]
		rows := strings.Count(values, "), (") + 1
		return fmt.Sprintf("VALUES %s /* %d rows */", first, rows)
	})
	if len(query) <= maxTracedQueryLength {
		return query
	}
	return query[:maxTracedQueryLength] + "..."
}
