// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import (
	"errors"
	"fmt"
)

// Taxonomy sentinels. Concrete error types below wrap them so callers can
// classify with errors.Is.
var (
	// ErrNotFound indicates the article source has no record for an id.
	ErrNotFound = errors.New("article not found")

	// ErrTransientUpstream indicates a rate limit, network or auth failure
	// from an upstream service.
	ErrTransientUpstream = errors.New("transient upstream error")

	// ErrStoreWrite indicates a document store write failed.
	ErrStoreWrite = errors.New("store write failed")

	// ErrPrecondition indicates a search could not obtain a required query vector.
	ErrPrecondition = errors.New("search precondition failed")
)

// Domain validation errors
var (
	// ErrInvalidArticle indicates an ArticleRecord or StoredArticle failed validation.
	ErrInvalidArticle = errors.New("invalid article")

	// ErrEmptyKey indicates a StoredArticle has no key.
	ErrEmptyKey = errors.New("key cannot be empty")

	// ErrNegativeCount indicates a like or comment count below zero.
	ErrNegativeCount = errors.New("count cannot be negative")
)

// Report labels used by ErrorClass.
const (
	ClassNotFound          = "NotFound"
	ClassTransientUpstream = "TransientUpstreamError"
	ClassStoreWrite        = "StoreWriteError"
	ClassPrecondition      = "PreconditionError"
	ClassUnknown           = "UnknownError"
)

// TransportError is returned by article sources when the upstream answers
// with an unexpected status or cannot be reached. Status is 0 when no
// response was received.
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("fetch %s: status %d", e.URL, e.Status)
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransientUpstream}
	}
	return []error{ErrTransientUpstream, e.Err}
}

// StoreWriteError records a failed document write for a key.
type StoreWriteError struct {
	Key string
	Err error
}

func (e *StoreWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Key, e.Err)
}

func (e *StoreWriteError) Unwrap() []error {
	return []error{ErrStoreWrite, e.Err}
}

// PreconditionError reports why a search could not run.
type PreconditionError struct {
	Reason string
	Err    error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no results possible: %s: %v", e.Reason, e.Err)
	}
	return "no results possible: " + e.Reason
}

func (e *PreconditionError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPrecondition}
	}
	return []error{ErrPrecondition, e.Err}
}

// ErrorClass maps an error onto its taxonomy label.
func ErrorClass(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrStoreWrite):
		return ClassStoreWrite
	case errors.Is(err, ErrPrecondition):
		return ClassPrecondition
	case errors.Is(err, ErrTransientUpstream):
		return ClassTransientUpstream
	default:
		return ClassUnknown
	}
}
