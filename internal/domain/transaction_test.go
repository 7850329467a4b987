package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TransactionType
		wantErr bool
	}{
		{name: "income", input: "INCOME", want: Income},
		{name: "expense", input: "EXPENSE", want: Expense},
		{name: "lowercase is rejected", input: "income", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "unknown", input: "TRANSFER", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTransactionType(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTransactionType_Delta(t *testing.T) {
	amount := decimal.RequireFromString("12.50")

	assert.True(t, Income.Delta(amount).Equal(amount))
	assert.True(t, Expense.Delta(amount).Equal(decimal.RequireFromString("-12.50")))
}

func TestTransactionType_Scan(t *testing.T) {
	var tt TransactionType

	require.NoError(t, tt.Scan("EXPENSE"))
	assert.Equal(t, Expense, tt)

	require.NoError(t, tt.Scan([]byte("INCOME")))
	assert.Equal(t, Income, tt)

	assert.Error(t, tt.Scan("REFUND"))
	assert.Error(t, tt.Scan(42))
}

func TestTransactionType_Value(t *testing.T) {
	v, err := Income.Value()
	require.NoError(t, err)
	assert.Equal(t, "INCOME", v)

	_, err = TransactionType("BOGUS").Value()
	assert.Error(t, err)
}

func TestTransaction_BeforeCreate(t *testing.T) {
	tx := &Transaction{Type: Income, Amount: decimal.NewFromInt(5)}
	require.NoError(t, tx.BeforeCreate(nil))

	assert.Len(t, tx.ID, 36)
	assert.False(t, tx.Date.IsZero())

	id, date := tx.ID, tx.Date
	require.NoError(t, tx.BeforeCreate(nil))
	assert.Equal(t, id, tx.ID)
	assert.Equal(t, date, tx.Date)
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		amount string
		want   bool
	}{
		{amount: "0.01", want: true},
		{amount: "100", want: true},
		{amount: "999999999999.99", want: true},
		{amount: "1000000000000", want: false},
		{amount: "12345678901234567.89", want: false},
		{amount: "0", want: false},
		{amount: "-1", want: false},
		{amount: "1.005", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(decimal.RequireFromString(tt.amount)))
		})
	}
}
