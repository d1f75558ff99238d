package models

import (
	"fmt"
	"strings"
)

// ValidationError reports bad caller input. It is raised before any I/O.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s", e.Field, e.Message)
}

// FetchError covers every upstream failure: transport, status, decoding and
// business errors reported in the response body.
type FetchError struct {
	Symbol      string
	Module      string
	URL         string
	StatusCode  int
	Code        string
	Description string
	Err         error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	b.WriteString("fetch")
	if e.Symbol != "" {
		b.WriteString(" ")
		b.WriteString(e.Symbol)
	}
	if e.Module != "" {
		b.WriteString("/")
		b.WriteString(e.Module)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&b, ": status %d", e.StatusCode)
	}
	if e.Code != "" {
		fmt.Fprintf(&b, ": %s", e.Code)
		if e.Description != "" {
			fmt.Fprintf(&b, " (%s)", e.Description)
		}
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Err }

// StoreError wraps a failed key-value operation.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
