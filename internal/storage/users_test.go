package storage

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
)

func TestStorage_ListActiveUserIDsByRole(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectQuery(q("FROM users")).
		WithArgs(orgID, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("m-1").AddRow("m-2"))

	ids, err := s.ListActiveUserIDsByRole(context.Background(), orgID, domain.ManagerRoles)
	require.NoError(t, err)
	assert.Equal(t, []string{"m-1", "m-2"}, ids)
}

func TestStorage_GetUserInOrganization(t *testing.T) {
	s, mock := newMockStorage(t)
	cols := []string{"id", "organization_id", "email", "full_name", "role", "is_active", "google_refresh_token", "created_at"}

	mock.ExpectQuery(q("FROM users")).
		WithArgs(techID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(techID, orgID, "tech@example.com", "Tess Tech", domain.RoleTechnician, true, "refresh-1", time.Now()))

	u, err := s.GetUserInOrganization(context.Background(), orgID, techID)
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", u.GoogleRefreshToken.String)

	mock.ExpectQuery(q("FROM users")).
		WithArgs(techID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(techID, orgID, "tech@example.com", "Tess Tech", domain.RoleTechnician, true, nil, time.Now()))

	_, err = s.GetUserInOrganization(context.Background(), otherID, techID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStorage_SetGoogleRefreshTokenNotFound(t *testing.T) {
	s, mock := newMockStorage(t)

	mock.ExpectExec(q("UPDATE users")).
		WithArgs("tok", techID, otherID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.SetGoogleRefreshToken(context.Background(), otherID, techID, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
