package client

import (
	"fmt"
	"strings"
)

// FilterOp is a comparison operator supported by the service's $filter parameter.
type FilterOp string

const (
	OpEq FilterOp = "eq"
	OpNe FilterOp = "ne"
)

// Filter fields understood by the hierarchy service.
const (
	FieldShortCode = "ShortCode"
	FieldNodeType  = "NodeType"
	FieldName      = "Name"
)

// filterParam is the query parameter carrying a Filter.
const filterParam = "$filter"

// Filter is a single equality or inequality predicate over a node field.
type Filter struct {
	Field string
	Op    FilterOp
	Value string
}

// Eq returns the predicate field = value.
func Eq(field, value string) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Ne returns the predicate field != value.
func Ne(field, value string) Filter {
	return Filter{Field: field, Op: OpNe, Value: value}
}

// String renders the filter as "<Field> <op> '<value>'".
// Single quotes inside the value are doubled.
func (f Filter) String() string {
	return fmt.Sprintf("%s %s '%s'", f.Field, f.Op, strings.ReplaceAll(f.Value, "'", "''"))
}

// IsZero reports whether f is the empty filter.
func (f Filter) IsZero() bool {
	return f == Filter{}
}

func (f Filter) validate() error {
	if f.Field == "" {
		return &ValidationError{Field: "filter.field", Message: "cannot be empty"}
	}
	if f.Op != OpEq && f.Op != OpNe {
		return &ValidationError{Field: "filter.op", Message: fmt.Sprintf("unsupported operator %q", f.Op)}
	}
	return nil
}
