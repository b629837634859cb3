package entity

import (
	"errors"
	"fmt"
)

// ErrMalformedRecord marks a record missing a field the output contract requires.
var ErrMalformedRecord = errors.New("entity: malformed record")

// MalformedRecordError names the record and field that failed normalization.
type MalformedRecordError struct {
	Entity string
	ID     string
	Field  string
}

func (e *MalformedRecordError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("entity: malformed %s record: missing %s", e.Entity, e.Field)
	}
	return fmt.Sprintf("entity: malformed %s record %s: missing %s", e.Entity, e.ID, e.Field)
}

func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

func malformed(entity, id, field string) error {
	return &MalformedRecordError{Entity: entity, ID: id, Field: field}
}
