package cache

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mikey/upi-risk-engine/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockSQLCache(t *testing.T, d dialect) (*SQLCache, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	for _, stmt := range d.schema {
		mock.ExpectExec(regexp.QuoteMeta(stmt)).WillReturnResult(sqlmock.NewResult(0, 0))
	}
	c, err := newSQLCache(db, d, zap.NewNop(), 0)
	require.NoError(t, err)
	return c, mock
}

func TestSQLCacheGet(t *testing.T) {
	c, mock := newMockSQLCache(t, sqliteDialect)

	rows := sqlmock.NewRows([]string{"payload", "last_seen", "expires_at"}).
		AddRow(`{"riskScore":0.8,"explanation":"lure","flags":["kyc"],"modelUsed":"gpt-4"}`, int64(1700000000), int64(1700003600))
	mock.ExpectQuery(regexp.QuoteMeta(selectEntryQuery)).
		WithArgs("abc", sqlmock.AnyArg()).
		WillReturnRows(rows)

	entry, err := c.Get(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, 0.8, entry.Assessment.RiskScore)
	assert.Equal(t, []string{"kyc"}, entry.Assessment.Flags)
	assert.Equal(t, int64(1700003600), entry.ExpiresAt.Unix())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLCacheGetMissing(t *testing.T) {
	c, mock := newMockSQLCache(t, sqliteDialect)

	mock.ExpectQuery(regexp.QuoteMeta(selectEntryQuery)).
		WithArgs("abc", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	_, err := c.Get(context.Background(), "abc")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestSQLCacheSet(t *testing.T) {
	for _, d := range []dialect{sqliteDialect, mysqlDialect} {
		t.Run(d.name, func(t *testing.T) {
			c, mock := newMockSQLCache(t, d)
			seen := time.Unix(1700000000, 0)

			mock.ExpectExec(regexp.QuoteMeta(d.upsert)).
				WithArgs("abc", sqlmock.AnyArg(), int64(1700000000), int64(1700000060)).
				WillReturnResult(sqlmock.NewResult(1, 1))

			err := c.Set(context.Background(), &core.CacheEntry{
				Key:        "abc",
				Assessment: core.ContextAssessment{RiskScore: 0.3},
				LastSeen:   seen,
				ExpiresAt:  seen.Add(time.Minute),
			})
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestSQLCacheCleanupAndStop(t *testing.T) {
	c, mock := newMockSQLCache(t, sqliteDialect)

	mock.ExpectExec(regexp.QuoteMeta(cleanupQuery)).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta(deleteEntryQuery)).
		WithArgs("abc").
		WillReturnError(errors.New("locked"))
	mock.ExpectClose()

	require.NoError(t, c.Cleanup(context.Background()))
	assert.Error(t, c.Delete(context.Background(), "abc"))
	c.Stop()
	assert.NoError(t, mock.ExpectationsWereMet())
}
