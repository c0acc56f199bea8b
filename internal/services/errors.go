package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrInvalidState    = errors.New("invalid state")
	ErrConflict        = errors.New("conflict")
)

// NotFoundError names the missing entity. It matches ErrNotFound.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %v not found", e.Entity, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// InvalidMethodError reports an unrecognized costing method.
type InvalidMethodError struct {
	Value string
}

func (e *InvalidMethodError) Error() string {
	return fmt.Sprintf("invalid COGS calculation method %q: only FIFO or WeightedAverage are supported", e.Value)
}

func (e *InvalidMethodError) Unwrap() error {
	return ErrInvalidArgument
}
