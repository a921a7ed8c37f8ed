// Package domain provides shared domain-level sentinel errors.
package domain

import "errors"

// ErrNotFound indicates the requested entity does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict indicates the entity already exists under the same identity.
var ErrConflict = errors.New("conflict: resource already exists")

// ErrValidation indicates the caller supplied invalid input.
var ErrValidation = errors.New("validation failed")

// ErrReadOnly indicates the section is marked as not editable.
var ErrReadOnly = errors.New("section is not editable")
