package checkout

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mskang/shopfront-checkout/internal/storefront"
)

func TestClampQuantity(t *testing.T) {
	tests := []struct {
		name        string
		in          int
		want        int
		wantClamped bool
	}{
		{"negative defaults to one", -5, 1, false},
		{"zero defaults to one", 0, 1, false},
		{"minimum passes through", 1, 1, false},
		{"mid-range passes through", 5, 5, false},
		{"maximum passes through", 10, 10, false},
		{"just above maximum is cut down", 11, 10, true},
		{"far above maximum is cut down", 100, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, clamped := clampQuantity(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantClamped, clamped)
		})
	}
}

func TestInitiator_ProductOrderClampsAndWarns(t *testing.T) {
	backend := &fakeBackend{order: &storefront.PendingOrder{
		OrderID:  "O1",
		Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
	}}
	notify := &recordingNotifier{}
	initiator := NewInitiator(backend, notify)

	_, err := initiator.Initiate(context.Background(), ProductSource{ProductID: 7, Quantity: 25})
	require.NoError(t, err)

	assert.Equal(t, 10, backend.lastQuantity)
	assert.True(t, notify.said("limited to 10"), "clamping should warn the user")
}

func TestInitiator_ValidQuantityDoesNotWarn(t *testing.T) {
	backend := &fakeBackend{order: &storefront.PendingOrder{
		OrderID:  "O1",
		Redirect: storefront.PaymentRedirect{URL: "https://pay.example/X"},
	}}
	notify := &recordingNotifier{}
	initiator := NewInitiator(backend, notify)

	_, err := initiator.Initiate(context.Background(), ProductSource{ProductID: 7, Quantity: 3})
	require.NoError(t, err)

	assert.Equal(t, 3, backend.lastQuantity)
	assert.Empty(t, notify.messages)
}

func TestInitiator_CreateFailureIsNotRetried(t *testing.T) {
	backend := &fakeBackend{createErr: errBoom}
	initiator := NewInitiator(backend, &recordingNotifier{})

	_, err := initiator.Initiate(context.Background(), CartSource{})
	require.Error(t, err)
	assert.Equal(t, 1, backend.createCalls)
}
