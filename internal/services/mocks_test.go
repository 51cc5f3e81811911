package services

import (
	"context"
	"testing"

	"nailsxlauren/internal/catalog"
	"nailsxlauren/internal/domain"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Create(ctx context.Context, b *domain.Booking) error {
	return m.Called(ctx, b).Error(0)
}

func (m *mockStore) List(ctx context.Context, search string, offset, limit int) ([]domain.Booking, int64, error) {
	args := m.Called(ctx, search, offset, limit)
	rows, _ := args.Get(0).([]domain.Booking)
	return rows, args.Get(1).(int64), args.Error(2)
}

func (m *mockStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStore) UpdateSchedule(ctx context.Context, id string, date, clock *string) (*domain.Booking, error) {
	args := m.Called(ctx, id, date, clock)
	b, _ := args.Get(0).(*domain.Booking)
	return b, args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Send(ctx context.Context, msg EmailMessage) error {
	return m.Called(ctx, msg).Error(0)
}

type mockUsers struct {
	mock.Mock
}

func (m *mockUsers) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUsers) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUsers) TouchLastLogin(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}
