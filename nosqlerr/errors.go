/*
 * Copyright 2021. Go-Sharding Author All Rights Reserved.
 *
 *  Licensed under the Apache License, Version 2.0 (the "License");
 *  you may not use this file except in compliance with the License.
 *  You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 *  Unless required by applicable law or agreed to in writing, software
 *  distributed under the License is distributed on an "AS IS" BASIS,
 *  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *  See the License for the specific language governing permissions and
 *  limitations under the License.
 */

// Package nosqlerr holds the error taxonomy shared by the query core, the
// transports and the reference engine.
package nosqlerr

import (
	"context"
	"fmt"

	"github.com/pingcap/errors"
)

type Code int

const (
	Unknown Code = iota
	// IllegalArgument is a malformed statement, option or binding, raised before any remote call.
	IllegalArgument
	// TableNotFound is raised by the remote engine for statements naming an unknown table.
	TableNotFound
	// RequestTimeout is one call exceeding its configured timeout.
	RequestTimeout
	// MemoryLimitExceeded is the engine refusing work above maxMemoryMB.
	MemoryLimitExceeded
	// ServerError is any other failure surfaced by the remote engine.
	ServerError
	// InvariantViolation is a contract breach by the remote engine, such as the
	// pagination loop guard tripping. It is fatal to the execution.
	InvariantViolation
)

var codeNames = map[Code]string{
	Unknown:             "UNKNOWN",
	IllegalArgument:     "ILLEGAL_ARGUMENT",
	TableNotFound:       "TABLE_NOT_FOUND",
	RequestTimeout:      "REQUEST_TIMEOUT",
	MemoryLimitExceeded: "MEMORY_LIMIT_EXCEEDED",
	ServerError:         "SERVER_ERROR",
	InvariantViolation:  "INVARIANT_VIOLATION",
}

func (c Code) String() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return fmt.Sprintf("Code(%d)", int(c))
}

// ParseCode is the inverse of Code.String, unknown names map to Unknown.
func ParseCode(name string) Code {
	for c, n := range codeNames {
		if n == name {
			return c
		}
	}
	return Unknown
}

// Retryable reports whether a caller may reasonably issue the same call again.
// The pagination loop itself never retries.
func (c Code) Retryable() bool {
	return c == RequestTimeout || c == ServerError
}

type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Cause() error  { return e.cause }
func (e *Error) Unwrap() error { return e.cause }

func newError(code Code, cause error, format string, args ...interface{}) error {
	return errors.WithStack(&Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		cause:   cause,
	})
}

func New(code Code, format string, args ...interface{}) error {
	return newError(code, nil, format, args...)
}

func Argument(format string, args ...interface{}) error {
	return newError(IllegalArgument, nil, format, args...)
}

func TableNotFoundf(table string) error {
	return newError(TableNotFound, nil, "table '%s' does not exist", table)
}

func Timeout(cause error, format string, args ...interface{}) error {
	return newError(RequestTimeout, cause, format, args...)
}

func Server(cause error, format string, args ...interface{}) error {
	return newError(ServerError, cause, format, args...)
}

func Fatal(format string, args ...interface{}) error {
	return newError(InvariantViolation, nil, format, args...)
}

// Wrap annotates err keeping its code reachable through CodeOf.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// As finds the first *Error in the Cause chain of err.
func As(err error) (*Error, bool) {
	type causer interface {
		Cause() error
	}
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e, true
		}
		c, ok := err.(causer)
		if !ok {
			return nil, false
		}
		err = c.Cause()
	}
	return nil, false
}

// CodeOf returns the code of the first *Error in the chain, Unknown otherwise.
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return Unknown
}

func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

func IsArgument(err error) bool { return Is(err, IllegalArgument) }
func IsNotFound(err error) bool { return Is(err, TableNotFound) }
func IsTimeout(err error) bool  { return Is(err, RequestTimeout) }
func IsFatal(err error) bool    { return Is(err, InvariantViolation) }

// FromTransport classifies an error returned by a remote call. Errors that already
// carry a code pass through, deadline expiry becomes RequestTimeout and anything
// else is a ServerError.
func FromTransport(err error, op string) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if errors.Cause(err) == context.DeadlineExceeded {
		return Timeout(err, "%s timed out", op)
	}
	return Server(err, "%s failed", op)
}
