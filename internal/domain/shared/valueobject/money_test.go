package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		in      string
		want    Currency
		wantErr bool
	}{
		{"usd", USD, false},
		{"USD", USD, false},
		{" eur ", EUR, false},
		{"us", "", true},
		{"1u$", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCurrency(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCurrency_Scale(t *testing.T) {
	assert.Equal(t, int32(2), USD.Scale())
	assert.Equal(t, int32(0), JPY.Scale())
}

func TestParseMoney(t *testing.T) {
	t.Run("dollars to cents", func(t *testing.T) {
		m, err := ParseMoney("85.50", USD)
		require.NoError(t, err)
		assert.Equal(t, int64(8550), m.Minor())
		assert.Equal(t, "85.50", m.String())
	})

	t.Run("whole amount", func(t *testing.T) {
		m, err := ParseMoney("4050", USD)
		require.NoError(t, err)
		assert.Equal(t, int64(405000), m.Minor())
	})

	t.Run("sub-cent precision rejected", func(t *testing.T) {
		_, err := ParseMoney("1.005", USD)
		assert.Error(t, err)
	})

	t.Run("garbage rejected", func(t *testing.T) {
		_, err := ParseMoney("ten", USD)
		assert.Error(t, err)
	})

	t.Run("zero decimal currency", func(t *testing.T) {
		m, err := ParseMoney("1200", JPY)
		require.NoError(t, err)
		assert.Equal(t, int64(1200), m.Minor())
		_, err = ParseMoney("12.5", JPY)
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoney(405000, USD)
	b := NewMoney(200000, USD)

	diff, err := a.Subtract(b)
	require.NoError(t, err)
	assert.Equal(t, int64(205000), diff.Minor())

	sum, err := diff.Add(b)
	require.NoError(t, err)
	assert.True(t, sum.Equals(a))

	_, err = a.Add(NewMoney(1, EUR))
	assert.Error(t, err)

	over, err := b.Subtract(a)
	require.NoError(t, err)
	assert.True(t, over.IsNegative())
	assert.True(t, over.ClampZero().IsZero())
	assert.Equal(t, int64(-8550), NewMoney(8550, USD).Negate().Minor())
}

func TestMoney_Display(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{NewMoney(405000, USD), "$4,050.00"},
		{NewMoney(8550, USD), "$85.50"},
		{NewMoney(5, USD), "$0.05"},
		{NewMoney(123456789, EUR), "€1,234,567.89"},
		{NewMoney(-8550, USD), "-$85.50"},
		{NewMoney(1000, JPY), "¥1,000"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.m.Display())
		})
	}
}

func TestMoney_JSON(t *testing.T) {
	data, err := json.Marshal(NewMoney(205000, USD))
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":205000,"currency":"usd","display":"$2,050.00"}`, string(data))

	var m Money
	require.NoError(t, json.Unmarshal(data, &m))
	assert.True(t, m.Equals(NewMoney(205000, USD)))
}
