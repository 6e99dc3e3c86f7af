package mocks

import (
	"github.com/benmeehan/fleet-monitor/internal/display"
	"github.com/stretchr/testify/mock"
)

// MockDisplay is a mock implementation of the display.Display interface
type MockDisplay struct {
	mock.Mock
}

func (m *MockDisplay) SetText(key display.Key, text string) bool {
	args := m.Called(key, text)
	return args.Bool(0)
}

func (m *MockDisplay) SetBadge(key display.Key, class display.Class, text string) bool {
	args := m.Called(key, class, text)
	return args.Bool(0)
}

func (m *MockDisplay) SwapIndicator(key display.Key, from, to display.Class, text string) bool {
	args := m.Called(key, from, to, text)
	return args.Bool(0)
}
