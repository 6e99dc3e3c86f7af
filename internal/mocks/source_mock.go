package mocks

import (
	"context"

	"github.com/benmeehan/fleet-monitor/internal/models"
	"github.com/benmeehan/fleet-monitor/pkg/eventsource"
	"github.com/stretchr/testify/mock"
)

// MockSource is a mock implementation of the eventsource.Source interface
type MockSource struct {
	mock.Mock
}

func (m *MockSource) Run(ctx context.Context, handle eventsource.Handler) error {
	args := m.Called(ctx, handle)
	return args.Error(0)
}

// MockFleetFetcher is a mock implementation of the services.FleetFetcher interface
type MockFleetFetcher struct {
	mock.Mock
}

func (m *MockFleetFetcher) FetchFleet(ctx context.Context, path string) (models.FleetSnapshot, error) {
	args := m.Called(ctx, path)
	snapshot, _ := args.Get(0).(models.FleetSnapshot)
	return snapshot, args.Error(1)
}
