package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vitalog/backend/internal/gateway"
	"github.com/vitalog/backend/pkg/api"
	"github.com/vitalog/backend/pkg/model"
	"go.uber.org/zap"
)

type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) Save(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockPaymentStore) GetByID(ctx context.Context, id string) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *MockPaymentStore) UpdateStatus(ctx context.Context, id string, status model.PaymentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) InitiatePayment(ctx context.Context, req gateway.InitiationRequest) (*gateway.InitiationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitiationResult), args.Error(1)
}

func paymentRequest() api.InitiatePaymentRequest {
	return api.InitiatePaymentRequest{
		UserID:         "user-1",
		SubscriptionID: "sub-1",
		Amount:         29.99,
		Currency:       "EUR",
	}
}

func TestInitiate_RecordsPendingPayment(t *testing.T) {
	repo := new(MockPaymentStore)
	gw := new(MockPaymentGateway)

	gw.On("InitiatePayment", mock.Anything, gateway.InitiationRequest{
		SubscriptionID: "sub-1",
		UserID:         "user-1",
		Amount:         29.99,
		Currency:       "EUR",
	}).Return(&gateway.InitiationResult{
		PaymentID:   "gw-123",
		Status:      "pending",
		RedirectURL: "https://pay.example.com/gw-123",
	}, nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(nil)

	service := NewPaymentService(repo, gw, nil, zap.NewNop())

	payment, err := service.Initiate(context.Background(), paymentRequest())
	require.NoError(t, err)

	assert.Equal(t, "gw-123", payment.GatewayPaymentID)
	assert.Equal(t, model.PaymentStatusPending, payment.Status)
	require.NotNil(t, payment.RedirectURL)
	assert.Equal(t, "https://pay.example.com/gw-123", *payment.RedirectURL)

	repo.AssertExpectations(t)
	gw.AssertExpectations(t)
}

func TestInitiate_GatewayFailureIsNotRecorded(t *testing.T) {
	repo := new(MockPaymentStore)
	gw := new(MockPaymentGateway)
	gw.On("InitiatePayment", mock.Anything, mock.Anything).Return(nil, errors.New("gateway unreachable"))

	service := NewPaymentService(repo, gw, nil, zap.NewNop())

	_, err := service.Initiate(context.Background(), paymentRequest())
	require.Error(t, err)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestInitiate_ValidatesRequest(t *testing.T) {
	service := NewPaymentService(new(MockPaymentStore), new(MockPaymentGateway), nil, zap.NewNop())

	req := paymentRequest()
	req.Amount = 0
	_, err := service.Initiate(context.Background(), req)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "amount")

	req = paymentRequest()
	req.Currency = "EURO"
	_, err = service.Initiate(context.Background(), req)
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "currency")
}

func TestMapGatewayStatus(t *testing.T) {
	tests := []struct {
		in   string
		want model.PaymentStatus
	}{
		{"pending", model.PaymentStatusPending},
		{"completed", model.PaymentStatusCompleted},
		{"succeeded", model.PaymentStatusCompleted},
		{"paid", model.PaymentStatusCompleted},
		{"failed", model.PaymentStatusFailed},
		{"declined", model.PaymentStatusFailed},
		{"cancelled", model.PaymentStatusFailed},
		{"", model.PaymentStatusPending},
		{"processing", model.PaymentStatusPending},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, mapGatewayStatus(tt.in), "status %q", tt.in)
	}
}
