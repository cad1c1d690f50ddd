package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartledger/internal/port"
)

// MockBillParser is a mock implementation of port.BillParser.
type MockBillParser struct {
	mock.Mock
}

func (m *MockBillParser) Parse(ctx context.Context, input port.ParseInput) (*port.ParseResult, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.ParseResult), args.Error(1)
}
