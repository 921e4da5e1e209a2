package store

import (
	"errors"
	"fmt"
)

// ErrCorruptBlob - блоб не декодируется или противоречит сам себе
var ErrCorruptBlob = errors.New("corrupt summit blob")

// CorruptBlobError описывает, чем именно блоб повреждён
type CorruptBlobError struct {
	Reason string
	Err    error
}

func (e *CorruptBlobError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", ErrCorruptBlob, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", ErrCorruptBlob, e.Reason)
}

func (e *CorruptBlobError) Unwrap() error {
	return e.Err
}

func (e *CorruptBlobError) Is(target error) bool {
	return target == ErrCorruptBlob
}

func corrupt(reason string, err error) error {
	return &CorruptBlobError{Reason: reason, Err: err}
}
