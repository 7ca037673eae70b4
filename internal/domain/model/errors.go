package model

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid transition")

// 許可されていない状態遷移
type TransitionError struct {
	Entity string
	From   string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: cannot %s from %q", e.Entity, e.Event, e.From)
}

func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
