package enums

import "fmt"

// CartOperation names a cart state transition.
type CartOperation string

const (
	CartOperationAdd       CartOperation = "add"
	CartOperationRemoveOne CartOperation = "remove_one"
	CartOperationRemove    CartOperation = "remove"
	CartOperationClear     CartOperation = "clear"
)

var validCartOperations = []CartOperation{
	CartOperationAdd,
	CartOperationRemoveOne,
	CartOperationRemove,
	CartOperationClear,
}

func (o CartOperation) String() string {
	return string(o)
}

func (o CartOperation) IsValid() bool {
	for _, candidate := range validCartOperations {
		if candidate == o {
			return true
		}
	}
	return false
}

func ParseCartOperation(value string) (CartOperation, error) {
	for _, candidate := range validCartOperations {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid cart operation %q", value)
}
