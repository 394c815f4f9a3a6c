package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/domain/shared"
)

func attachExpect(h *harness, ref, last4 string) {
	h.processor.On("AttachPaymentMethod", mock.Anything, mock.MatchedBy(func(req payment.AttachMethodRequest) bool {
		return req.PaymentMethodRef == ref
	})).Return(&payment.ProcessorPaymentMethod{Reference: ref, Brand: "visa", Last4: last4, ExpMonth: 4, ExpYear: 2029}, nil).Once()
}

func TestMethodService_AttachAndDefault(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	attachExpect(h, "pm_1", "4242")
	first, err := h.methods.AttachMethod(ctx, "cus_1", AttachMethodRequest{PaymentMethodRef: "pm_1"})
	require.NoError(t, err)
	assert.True(t, first.IsDefault, "first method becomes the default")
	assert.Equal(t, "4242", first.Last4)

	attachExpect(h, "pm_2", "1881")
	second, err := h.methods.AttachMethod(ctx, "cus_1", AttachMethodRequest{PaymentMethodRef: "pm_2"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	again, err := h.methods.AttachMethod(ctx, "cus_1", AttachMethodRequest{PaymentMethodRef: "pm_2"})
	require.NoError(t, err)
	assert.Equal(t, second.ID, again.ID)

	_, err = h.methods.SetDefault(ctx, "cus_1", second.ID)
	require.NoError(t, err)

	list, err := h.methods.ListMethods(ctx, "cus_1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.True(t, list[0].IsDefault)
	assert.False(t, list[1].IsDefault)

	def, err := h.methods.DefaultMethod(ctx, "cus_1")
	require.NoError(t, err)
	assert.Equal(t, second.ID, def.ID)
}

func TestMethodService_MakeDefaultOnAttach(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	attachExpect(h, "pm_a", "1111")
	attachExpect(h, "pm_b", "2222")

	_, err := h.methods.AttachMethod(ctx, "cus_2", AttachMethodRequest{PaymentMethodRef: "pm_a"})
	require.NoError(t, err)
	b, err := h.methods.AttachMethod(ctx, "cus_2", AttachMethodRequest{PaymentMethodRef: "pm_b", MakeDefault: true})
	require.NoError(t, err)
	assert.True(t, b.IsDefault)

	def, err := h.methods.DefaultMethod(ctx, "cus_2")
	require.NoError(t, err)
	assert.Equal(t, b.ID, def.ID)
}

func TestMethodService_RemovePromotesNextDefault(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	attachExpect(h, "pm_x", "1111")
	attachExpect(h, "pm_y", "2222")

	x, err := h.methods.AttachMethod(ctx, "cus_3", AttachMethodRequest{PaymentMethodRef: "pm_x"})
	require.NoError(t, err)
	y, err := h.methods.AttachMethod(ctx, "cus_3", AttachMethodRequest{PaymentMethodRef: "pm_y"})
	require.NoError(t, err)
	require.True(t, x.IsDefault)

	h.processor.On("DetachPaymentMethod", mock.Anything, "pm_x").Return(nil).Once()
	require.NoError(t, h.methods.RemoveMethod(ctx, "cus_3", x.ID))

	def, err := h.methods.DefaultMethod(ctx, "cus_3")
	require.NoError(t, err)
	require.NotNil(t, def)
	assert.Equal(t, y.ID, def.ID)

	h.processor.On("DetachPaymentMethod", mock.Anything, "pm_y").Return(nil).Once()
	require.NoError(t, h.methods.RemoveMethod(ctx, "cus_3", y.ID))
	def, err = h.methods.DefaultMethod(ctx, "cus_3")
	require.NoError(t, err)
	assert.Nil(t, def)
}

func TestMethodService_OwnerMismatchIsNotFound(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	attachExpect(h, "pm_o", "1111")
	m, err := h.methods.AttachMethod(ctx, "cus_4", AttachMethodRequest{PaymentMethodRef: "pm_o"})
	require.NoError(t, err)

	_, err = h.methods.SetDefault(ctx, "cus_other", m.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	err = h.methods.RemoveMethod(ctx, "cus_other", m.ID)
	assert.Equal(t, shared.KindNotFound, shared.KindOf(err))
	h.processor.AssertNotCalled(t, "DetachPaymentMethod", mock.Anything, mock.Anything)
}

func TestMethodService_ExpiredFlag(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	attachExpect(h, "pm_e", "1111")
	_, err := h.methods.AttachMethod(ctx, "cus_5", AttachMethodRequest{PaymentMethodRef: "pm_e"})
	require.NoError(t, err)

	h.now = h.now.AddDate(4, 0, 0)
	list, err := h.methods.ListMethods(ctx, "cus_5")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Expired)
}
