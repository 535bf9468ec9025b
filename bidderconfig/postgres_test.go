package bidderconfig

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prebid/oneplusx-rtd/openrtb_ext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	expectedReadQuery   = `SELECT config FROM "bidder_configs" WHERE bidder = $1`
	expectedUpsertQuery = `INSERT INTO "bidder_configs" (bidder, config) VALUES ($1, $2) ON CONFLICT (bidder) DO UPDATE SET config = EXCLUDED.config`
)

func newTestPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, "bidder_configs"), mock
}

func TestPostgresStoreRead(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	rows := sqlmock.NewRows([]string{"config"}).AddRow([]byte(`{"ortb2":{}}`))
	mock.ExpectQuery(expectedReadQuery).WithArgs("appnexus").WillReturnRows(rows)

	entry, err := store.Read(context.Background(), openrtb_ext.BidderAppnexus)

	assert.NoError(t, err)
	assert.Equal(t, json.RawMessage(`{"ortb2":{}}`), entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreReadMissing(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery(expectedReadQuery).WithArgs("rubicon").WillReturnRows(sqlmock.NewRows([]string{"config"}))

	entry, err := store.Read(context.Background(), openrtb_ext.BidderRubicon)

	assert.NoError(t, err)
	assert.Nil(t, entry)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreReadError(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectQuery(expectedReadQuery).WithArgs("rubicon").WillReturnError(errors.New("connection refused"))

	_, err := store.Read(context.Background(), openrtb_ext.BidderRubicon)

	assert.EqualError(t, err, "postgres read bidder config rubicon: connection refused")
}

func TestPostgresStoreWrite(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectExec(expectedUpsertQuery).
		WithArgs("appnexus", []byte(`{"a":1}`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Write(context.Background(), openrtb_ext.BidderAppnexus, json.RawMessage(`{"a":1}`))

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStoreWriteError(t *testing.T) {
	store, mock := newTestPostgresStore(t)
	mock.ExpectExec(expectedUpsertQuery).WillReturnError(errors.New("deadlock"))

	err := store.Write(context.Background(), openrtb_ext.BidderAppnexus, json.RawMessage(`{}`))

	assert.EqualError(t, err, "postgres write bidder config appnexus: deadlock")
}
