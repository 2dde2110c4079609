package storage

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/fieldservice-be/shared/logger"
)

const (
	orgID   = "0f8fad5b-d9cb-469f-a165-70867728950e"
	otherID = "7c9e6679-7425-40de-944b-e07fc1f90ae7"
	jobID   = "1b4e28ba-2fa1-11d2-883f-0016d3cca427"
	techID  = "6fa459ea-ee8a-3ca4-894e-db77e160355e"
	jtID    = "886313e1-3b8a-5372-9b90-0c9aee199e5d"
)

func newMockStorage(t *testing.T) (*Storage, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return NewStorage(sqlx.NewDb(db, "postgres"), logger.NewNop()), mock
}

func q(s string) string {
	return regexp.QuoteMeta(s)
}
