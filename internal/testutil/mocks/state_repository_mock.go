package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/revplan/internal/repository"
)

// MockStateRepository is a mock implementation of repository.StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Load(ctx context.Context) (*repository.State, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.State), args.Error(1)
}

func (m *MockStateRepository) Save(ctx context.Context, state *repository.State, keys ...string) error {
	args := m.Called(ctx, state, keys)
	return args.Error(0)
}

func (m *MockStateRepository) Reset(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
