package subscription

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (Repository, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewRepository(sqlxDB)

	closer := func() {
		sqlxDB.Close()
	}

	return repo, mock, closer
}

func subscriptionRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "member_id", "category", "equipment", "monthly_allotment",
		"remaining_credits", "status", "valid_from", "valid_until", "created_at", "updated_at",
	})
}

func TestCreateSubscription(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()
	eight := 8

	mock.ExpectQuery("INSERT INTO subscriptions").
		WithArgs(7, CategoryGroup, EquipmentMat, &eight, 8, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(subscriptionRows().
			AddRow(1, 7, "group", "mat", 8, 8, "active", now, now.AddDate(0, 0, 30), now, now))

	sub, err := repo.CreateSubscription(context.Background(), 7, CategoryGroup, EquipmentMat, &eight, 30)
	require.NoError(t, err)
	require.Equal(t, 1, sub.ID)
	require.Equal(t, 8, sub.RemainingCredits)
	require.False(t, sub.Unlimited())
}

func TestCreateUnlimitedSubscription(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery("INSERT INTO subscriptions").
		WithArgs(7, CategoryGroup, EquipmentBoth, nil, 0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnRows(subscriptionRows().
			AddRow(2, 7, "group", "both", nil, 0, "active", now, now.AddDate(0, 0, 30), now, now))

	sub, err := repo.CreateSubscription(context.Background(), 7, CategoryGroup, EquipmentBoth, nil, 30)
	require.NoError(t, err)
	require.True(t, sub.Unlimited())
}

func TestGetActiveForMember(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	now := time.Now()

	mock.ExpectQuery("SELECT .+ FROM subscriptions").
		WithArgs(7).
		WillReturnRows(subscriptionRows().
			AddRow(3, 7, "personal_duo", "reformer", 4, 2, "active", now, now.AddDate(0, 0, 20), now, now))

	sub, err := repo.GetActiveForMember(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, CategoryPersonalDuo, sub.Category)
	require.Equal(t, 2, sub.RemainingCredits)
}

func TestDeactivate(t *testing.T) {
	repo, mock, close := setupMock(t)
	defer close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions")).
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), 3))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE subscriptions")).
		WithArgs(99).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Deactivate(context.Background(), 99)
	require.Equal(t, ErrSubscriptionNotFound, err)
}
