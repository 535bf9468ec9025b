package bidderconfig

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/prebid/oneplusx-rtd/config"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
)

// PostgresStore keeps bidder config entries in a table with a text primary key "bidder"
// and a jsonb column "config".
type PostgresStore struct {
	db          *sql.DB
	readQuery   string
	upsertQuery string
}

// OpenPostgresStore opens a connection pool to the database described by cfg.
func OpenPostgresStore(cfg config.PostgresStore) (*PostgresStore, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres bidder config store: %w", err)
	}
	return NewPostgresStore(db, cfg.Table), nil
}

func NewPostgresStore(db *sql.DB, table string) *PostgresStore {
	quoted := pq.QuoteIdentifier(table)
	return &PostgresStore{
		db:        db,
		readQuery: fmt.Sprintf("SELECT config FROM %s WHERE bidder = $1", quoted),
		upsertQuery: fmt.Sprintf("INSERT INTO %s (bidder, config) VALUES ($1, $2) "+
			"ON CONFLICT (bidder) DO UPDATE SET config = EXCLUDED.config", quoted),
	}
}

func (s *PostgresStore) Read(ctx context.Context, bidder openrtb_ext.BidderName) (json.RawMessage, error) {
	var entry []byte
	err := s.db.QueryRowContext(ctx, s.readQuery, string(bidder)).Scan(&entry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("postgres read bidder config %s: %w", bidder, err)
	}
	return json.RawMessage(entry), nil
}

func (s *PostgresStore) Write(ctx context.Context, bidder openrtb_ext.BidderName, entry json.RawMessage) error {
	if _, err := s.db.ExecContext(ctx, s.upsertQuery, string(bidder), []byte(entry)); err != nil {
		return fmt.Errorf("postgres write bidder config %s: %w", bidder, err)
	}
	return nil
}
