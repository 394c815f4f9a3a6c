package handler

import (
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apppayment "github.com/transitpay/settlement/internal/application/payment"
	"github.com/transitpay/settlement/internal/domain/payment"
	"github.com/transitpay/settlement/internal/interfaces/http/dto"
	"github.com/transitpay/settlement/internal/testutil"
)

func (a *api) attach(t *testing.T, owner, ref, last4 string) apppayment.MethodResponse {
	t.Helper()
	a.processor.On("AttachPaymentMethod", mock.Anything, mock.MatchedBy(func(req payment.AttachMethodRequest) bool {
		return req.PaymentMethodRef == ref
	})).Return(&payment.ProcessorPaymentMethod{Reference: ref, Brand: "mastercard", Last4: last4, ExpMonth: 8, ExpYear: 2030}, nil).Once()

	w := testutil.Do(t, a.engine, http.MethodPost, "/api/v1/owners/"+owner+"/payment-methods", map[string]any{"payment_method_ref": ref})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return testutil.DecodeData[apppayment.MethodResponse](t, w)
}

func TestMethodHandler(t *testing.T) {
	a := newAPI(t)
	base := "/api/v1/owners/rider_5/payment-methods"

	w := testutil.Do(t, a.engine, http.MethodGet, base+"/default", nil)
	testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)

	first := a.attach(t, "rider_5", "pm_a", "4444")
	assert.True(t, first.IsDefault)
	second := a.attach(t, "rider_5", "pm_b", "5555")
	assert.False(t, second.IsDefault)

	w = testutil.Do(t, a.engine, http.MethodPut, base+"/"+second.ID.String()+"/default", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.Do(t, a.engine, http.MethodGet, base+"/default", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, second.ID, testutil.DecodeData[apppayment.MethodResponse](t, w).ID)

	w = testutil.Do(t, a.engine, http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, testutil.DecodeData[[]apppayment.MethodResponse](t, w), 2)

	t.Run("other owners cannot touch the method", func(t *testing.T) {
		w := testutil.Do(t, a.engine, http.MethodDelete, "/api/v1/owners/rider_6/payment-methods/"+first.ID.String(), nil)
		testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})

	t.Run("remove", func(t *testing.T) {
		a.processor.On("DetachPaymentMethod", mock.Anything, "pm_b").Return(nil).Once()
		w := testutil.Do(t, a.engine, http.MethodDelete, base+"/"+second.ID.String(), nil)
		assert.Equal(t, http.StatusNoContent, w.Code)

		w = testutil.Do(t, a.engine, http.MethodGet, base+"/default", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, first.ID, testutil.DecodeData[apppayment.MethodResponse](t, w).ID, "the remaining method is promoted")
	})

	t.Run("request validation", func(t *testing.T) {
		w := testutil.Do(t, a.engine, http.MethodPost, base, map[string]any{})
		testutil.AssertError(t, w, http.StatusUnprocessableEntity, dto.ErrCodeValidation)

		w = testutil.Do(t, a.engine, http.MethodGet, "/api/v1/owners/"+strings.Repeat("x", 101)+"/payment-methods", nil)
		testutil.AssertError(t, w, http.StatusBadRequest, dto.ErrCodeBadRequest)

		w = testutil.Do(t, a.engine, http.MethodPut, base+"/"+uuid.NewString()+"/default", nil)
		testutil.AssertError(t, w, http.StatusNotFound, dto.ErrCodeNotFound)
	})
}
