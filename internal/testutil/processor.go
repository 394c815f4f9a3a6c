package testutil

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/transitpay/settlement/internal/domain/payment"
)

// MockProcessor is a testify mock of payment.Processor.
type MockProcessor struct {
	mock.Mock
}

func (m *MockProcessor) CreateIntent(ctx context.Context, req payment.CreateIntentRequest) (*payment.ProcessorIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProcessorIntent), args.Error(1)
}

func (m *MockProcessor) CaptureIntent(ctx context.Context, req payment.CaptureIntentRequest) (*payment.ProcessorIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProcessorIntent), args.Error(1)
}

func (m *MockProcessor) CancelIntent(ctx context.Context, req payment.CancelIntentRequest) (*payment.ProcessorIntent, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProcessorIntent), args.Error(1)
}

func (m *MockProcessor) RetrieveIntent(ctx context.Context, reference string) (*payment.ProcessorIntent, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProcessorIntent), args.Error(1)
}

func (m *MockProcessor) CreateRefund(ctx context.Context, req payment.RefundRequest) (*payment.ProcessorRefund, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProcessorRefund), args.Error(1)
}

func (m *MockProcessor) AttachPaymentMethod(ctx context.Context, req payment.AttachMethodRequest) (*payment.ProcessorPaymentMethod, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.ProcessorPaymentMethod), args.Error(1)
}

func (m *MockProcessor) DetachPaymentMethod(ctx context.Context, reference string) error {
	args := m.Called(ctx, reference)
	return args.Error(0)
}

var _ payment.Processor = (*MockProcessor)(nil)
