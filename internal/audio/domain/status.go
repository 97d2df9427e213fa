package domain

import "fmt"

// Status transitions are one-way: pending -> processing -> done|error.

type Status string

const (
	Pending    Status = "pending"
	Processing Status = "processing"
	Done       Status = "done"
	Error      Status = "error"
)

func CanTransition(from, to Status) bool {
	switch from {
	case Pending:
		return to == Processing || to == Error
	case Processing:
		return to == Done || to == Error
	case Done:
		return false
	case Error:
		return false
	default:
		return false
	}
}

func ValidateTransition(from, to Status) error {
	if from == to {
		return nil
	}
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
