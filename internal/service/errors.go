// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/olegiv/blockcms/internal/auth"
	"github.com/olegiv/blockcms/internal/editor"
	"github.com/olegiv/blockcms/internal/model"
)

// ValidationError reports malformed or missing input. Fields maps input
// paths such as "sections[2].type" to messages.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return "validation failed: " + e.Message + " (" + strings.Join(parts, "; ") + ")"
}

func invalid(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

// AuthorizationError reports a role that lacks a capability.
type AuthorizationError struct {
	Role   string
	Action auth.Action
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("role %q may not %s", e.Role, e.Action)
}

// ConflictError reports a stale concurrency token. It matches
// editor.ErrStale so editing sessions recognise it.
type ConflictError struct {
	Collection model.CollectionRef
	Expected   string
	Current    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s was modified at %s, expected %s", e.Collection, e.Current, e.Expected)
}

// Is reports ConflictError as editor.ErrStale.
func (e *ConflictError) Is(target error) bool {
	return target == editor.ErrStale
}

// NotFoundError reports a missing collection or revision.
type NotFoundError struct {
	What string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.What, e.ID)
}

// StoreUnavailableError wraps a transient storage failure. Nothing was
// written; the operation can be retried.
type StoreUnavailableError struct {
	Op  string
	Err error
}

func (e *StoreUnavailableError) Error() string {
	return fmt.Sprintf("%s: store unavailable: %v", e.Op, e.Err)
}

func (e *StoreUnavailableError) Unwrap() error {
	return e.Err
}

// SchemaDriftError reports that revision history could not be written
// because its tables are missing or outdated.
type SchemaDriftError struct {
	Err error
}

func (e *SchemaDriftError) Error() string {
	return fmt.Sprintf("revision history unavailable: %v", e.Err)
}

func (e *SchemaDriftError) Unwrap() error {
	return e.Err
}

// Machine-readable error codes used at the HTTP boundary.
const (
	CodeStale            = "STALE"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeNotFound         = "NOT_FOUND"
	CodeValidationFailed = "VALIDATION_FAILED"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// ErrorCode classifies err into one of the machine-readable codes. Errors
// of unknown kind are reported as CodeStoreUnavailable.
func ErrorCode(err error) string {
	var (
		verr  *ValidationError
		aerr  *AuthorizationError
		cerr  *ConflictError
		nerr  *NotFoundError
		everr *editor.ValidationError
	)
	switch {
	case errors.As(err, &cerr), errors.Is(err, editor.ErrStale):
		return CodeStale
	case errors.As(err, &aerr):
		return CodeUnauthorized
	case errors.As(err, &nerr):
		return CodeNotFound
	case errors.As(err, &verr), errors.As(err, &everr):
		return CodeValidationFailed
	default:
		return CodeStoreUnavailable
	}
}
