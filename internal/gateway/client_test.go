package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeInitiationResponse_CamelCase(t *testing.T) {
	body := []byte(`{"paymentId":"pay-1","status":"pending","paymentUrl":"https://gw.example/p/1"}`)

	result, err := normalizeInitiationResponse(body)
	require.NoError(t, err)

	assert.Equal(t, "pay-1", result.PaymentID)
	assert.Equal(t, "pending", result.Status)
	assert.Equal(t, "https://gw.example/p/1", result.RedirectURL)
}

func TestNormalizeInitiationResponse_PascalAndSnakeCase(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "pascal", body: `{"PaymentID":"pay-2","Status":"pending","PaymentURL":"https://gw.example/p/2"}`},
		{name: "snake", body: `{"payment_id":"pay-2","status":"pending","payment_url":"https://gw.example/p/2"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := normalizeInitiationResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, "pay-2", result.PaymentID)
			assert.NotEmpty(t, result.RedirectURL)
		})
	}
}

func TestNormalizeInitiationResponse_DefaultsStatusToPending(t *testing.T) {
	result, err := normalizeInitiationResponse([]byte(`{"paymentId":"pay-3"}`))
	require.NoError(t, err)
	assert.Equal(t, "pending", result.Status)
	assert.Empty(t, result.RedirectURL)
}

func TestNormalizeInitiationResponse_MissingPaymentID(t *testing.T) {
	_, err := normalizeInitiationResponse([]byte(`{"status":"pending"}`))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "payment id")
}

func TestNormalizeInitiationResponse_NotAnObject(t *testing.T) {
	_, err := normalizeInitiationResponse([]byte(`[1,2,3]`))
	assert.Error(t, err)
}
