package mocks

import (
	"context"

	"github.com/benmeehan/fleet-monitor/pkg/fleetapi"
	"github.com/stretchr/testify/mock"
)

// MockPoster is a mock implementation of the dispatcher.Poster interface
type MockPoster struct {
	mock.Mock
}

func (m *MockPoster) PostJSON(ctx context.Context, path string, body any) (*fleetapi.Response, error) {
	args := m.Called(ctx, path, body)
	resp, _ := args.Get(0).(*fleetapi.Response)
	return resp, args.Error(1)
}
