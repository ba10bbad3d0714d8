package entities

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	shared "github.com/whiteelite/registry/pkg/shared/domain/entities"
)

func TestTaskFields(t *testing.T) {
	task := &Task{Name: "Design database schema", Priority: PriorityMedium, Status: StatusNew}

	tests := []struct {
		field string
		value any
		want  any
	}{
		{TaskFieldName, "Fix UI styling issues", "Fix UI styling issues"},
		{TaskFieldDescription, "Apply CSS fixes", "Apply CSS fixes"},
		{TaskFieldPriority, PriorityLow, PriorityLow},
		{TaskFieldPriority, "High", PriorityHigh},
		{TaskFieldStatus, StatusInProgress, StatusInProgress},
		{TaskFieldStatus, "Blocked", Status("Blocked")},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			require.NoError(t, task.SetField(tt.field, tt.value))
			got, ok := task.Field(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaskSetFieldRejects(t *testing.T) {
	task := Task{Name: "A", Status: StatusNew}

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"unknown field", "owner", "bob"},
		{"wrong type", TaskFieldStatus, 42},
		{"empty name", TaskFieldName, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := task
			err := task.SetField(tt.field, tt.value)
			assert.ErrorIs(t, err, shared.ErrInvalidArgument)
			assert.Equal(t, before, task)
		})
	}

	_, ok := task.Field("owner")
	assert.False(t, ok)
}

func TestTaskValidate(t *testing.T) {
	assert.ErrorIs(t, Task{}.Validate(), shared.ErrInvalidArgument)
	assert.NoError(t, Task{Name: "A"}.Validate())
}

func TestAccountFields(t *testing.T) {
	acc := &Account{Number: 1001, Holder: "John Doe", Balance: decimal.NewFromInt(5000)}

	require.NoError(t, acc.SetField(AccountFieldBalance, "7500.25"))
	got, ok := acc.Field(AccountFieldBalance)
	require.True(t, ok)
	assert.True(t, got.(decimal.Decimal).Equal(decimal.RequireFromString("7500.25")))

	require.NoError(t, acc.SetField(AccountFieldBalance, 10))
	assert.True(t, acc.Balance.Equal(decimal.NewFromInt(10)))

	require.NoError(t, acc.SetField(AccountFieldHolder, "Alice Smith"))
	assert.Equal(t, OwnerName("Alice Smith"), acc.Holder)

	require.NoError(t, acc.SetField(AccountFieldNumber, 1002))
	assert.Equal(t, AccountNumber(1002), acc.Number)
}

func TestAccountSetFieldRejects(t *testing.T) {
	acc := Account{Number: 1001, Holder: "John Doe", Balance: decimal.NewFromInt(5)}

	tests := []struct {
		name  string
		field string
		value any
	}{
		{"negative balance", AccountFieldBalance, -1},
		{"not a decimal", AccountFieldBalance, "lots"},
		{"unsupported amount type", AccountFieldBalance, true},
		{"zero number", AccountFieldNumber, 0},
		{"number as string", AccountFieldNumber, "1001"},
		{"empty holder", AccountFieldHolder, ""},
		{"unknown field", "currency", "USD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := acc.SetField(tt.field, tt.value)
			assert.ErrorIs(t, err, shared.ErrInvalidArgument)
			assert.Equal(t, AccountNumber(1001), acc.Number)
			assert.Equal(t, OwnerName("John Doe"), acc.Holder)
			assert.True(t, acc.Balance.Equal(decimal.NewFromInt(5)))
		})
	}
}

func TestAccountValidate(t *testing.T) {
	assert.NoError(t, Account{Number: 1, Holder: "A"}.Validate())
	assert.ErrorIs(t, Account{Holder: "A"}.Validate(), shared.ErrInvalidArgument)
	assert.ErrorIs(t, Account{Number: 1}.Validate(), shared.ErrInvalidArgument)
	assert.ErrorIs(t, Account{Number: 1, Holder: "A", Balance: decimal.NewFromInt(-1)}.Validate(), shared.ErrInvalidArgument)
}
