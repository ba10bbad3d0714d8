package entities

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/whiteelite/registry/pkg/shared/domain/entities"
)

type (
	Priority string
	Status   string
)

const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Task field names accepted by Field and SetField.
const (
	TaskFieldName        = "name"
	TaskFieldDescription = "description"
	TaskFieldPriority    = "priority"
	TaskFieldStatus      = "status"
)

type Task struct {
	entities.Entity

	Name        string   `json:"name"`
	Description string   `json:"description"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
}

func (t Task) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("%w: task name is required", entities.ErrInvalidArgument)
	}
	return nil
}

func (t *Task) Field(name string) (any, bool) {
	switch name {
	case TaskFieldName:
		return t.Name, true
	case TaskFieldDescription:
		return t.Description, true
	case TaskFieldPriority:
		return t.Priority, true
	case TaskFieldStatus:
		return t.Status, true
	}
	return nil, false
}

func (t *Task) SetField(name string, value any) error {
	s, ok := stringValue(value)
	if !ok {
		return fieldTypeError(name, value)
	}

	switch name {
	case TaskFieldName:
		if s == "" {
			return fmt.Errorf("%w: task name is required", entities.ErrInvalidArgument)
		}
		t.Name = s
	case TaskFieldDescription:
		t.Description = s
	case TaskFieldPriority:
		t.Priority = Priority(s)
	case TaskFieldStatus:
		t.Status = Status(s)
	default:
		return unknownFieldError("task", name)
	}
	return nil
}

type (
	AccountNumber int64
	OwnerName     string
)

// Account field names accepted by Field and SetField.
const (
	AccountFieldNumber  = "number"
	AccountFieldHolder  = "holder"
	AccountFieldBalance = "balance"
)

type Account struct {
	entities.Entity

	Number  AccountNumber   `json:"number"`
	Holder  OwnerName       `json:"holder"`
	Balance decimal.Decimal `json:"balance"`
}

func (a Account) Validate() error {
	if a.Number <= 0 {
		return fmt.Errorf("%w: account number must be positive", entities.ErrInvalidArgument)
	}
	if a.Holder == "" {
		return fmt.Errorf("%w: account holder is required", entities.ErrInvalidArgument)
	}
	if a.Balance.IsNegative() {
		return fmt.Errorf("%w: balance cannot be negative", entities.ErrInvalidArgument)
	}
	return nil
}

func (a *Account) Field(name string) (any, bool) {
	switch name {
	case AccountFieldNumber:
		return a.Number, true
	case AccountFieldHolder:
		return a.Holder, true
	case AccountFieldBalance:
		return a.Balance, true
	}
	return nil, false
}

func (a *Account) SetField(name string, value any) error {
	switch name {
	case AccountFieldNumber:
		var n AccountNumber
		switch v := value.(type) {
		case AccountNumber:
			n = v
		case int:
			n = AccountNumber(v)
		case int64:
			n = AccountNumber(v)
		default:
			return fieldTypeError(name, value)
		}
		if n <= 0 {
			return fmt.Errorf("%w: account number must be positive", entities.ErrInvalidArgument)
		}
		a.Number = n
	case AccountFieldHolder:
		s, ok := stringValue(value)
		if !ok {
			return fieldTypeError(name, value)
		}
		if s == "" {
			return fmt.Errorf("%w: account holder is required", entities.ErrInvalidArgument)
		}
		a.Holder = OwnerName(s)
	case AccountFieldBalance:
		d, err := ToDecimal(value)
		if err != nil {
			return err
		}
		if d.IsNegative() {
			return fmt.Errorf("%w: balance cannot be negative", entities.ErrInvalidArgument)
		}
		a.Balance = d
	default:
		return unknownFieldError("account", name)
	}
	return nil
}

// ToDecimal converts the numeric representations accepted for money fields.
func ToDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case decimal.Decimal:
		return v, nil
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: %q is not a decimal", entities.ErrInvalidArgument, v)
		}
		return d, nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	}
	return decimal.Zero, fmt.Errorf("%w: unsupported amount type %T", entities.ErrInvalidArgument, value)
}

func stringValue(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case Status:
		return string(v), true
	case Priority:
		return string(v), true
	case OwnerName:
		return string(v), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

func fieldTypeError(name string, value any) error {
	return fmt.Errorf("%w: field %q does not accept %T", entities.ErrInvalidArgument, name, value)
}

func unknownFieldError(record, name string) error {
	return fmt.Errorf("%w: %s has no field %q", entities.ErrInvalidArgument, record, name)
}
