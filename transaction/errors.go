// Copyright 2026 Blink Labs Software
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

package transaction

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResolution    = errors.New("resolution failed")
	ErrValidation    = errors.New("validation failed")
	ErrLimitExceeded = errors.New("limit exceeded")
)

var (
	ErrTooManyGasObjects    = errors.New("too many gas objects")
	ErrPureArgumentTooLarge = errors.New("pure argument too large")
	ErrTransactionTooLarge  = errors.New("transaction too large")
	ErrUnresolvedInput      = errors.New("unresolved input")
	ErrUnresolvedIntent     = errors.New("unresolved intent")
	ErrObjectNotFound       = errors.New("object not found")
	ErrNoGasCoins           = errors.New("no usable gas coins")
	ErrInsufficientGas      = errors.New("gas coins do not cover the budget")
	ErrInsufficientBalance  = errors.New("insufficient coin balance")
	ErrFunctionNotFound     = errors.New("move function not found")
	ErrMissingObjectVersion = errors.New("object version or digest unknown")
	ErrMissingSender        = errors.New("missing sender")
	ErrMissingGasData       = errors.New("missing gas data")
	ErrNoResolver           = errors.New("no data resolver configured")
	ErrArgumentCount        = errors.New("argument count mismatch")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrDryRunFailed         = errors.New("dry run failed")
	ErrTooManyInputs        = errors.New("too many inputs")
	ErrTooManyCommands      = errors.New("too many commands")
)

// location renders the input and command indices of a failure. Negative
// indices are omitted.
func location(input int, command int) string {
	var parts []string
	if command >= 0 {
		parts = append(parts, fmt.Sprintf("command %d", command))
	}
	if input >= 0 {
		parts = append(parts, fmt.Sprintf("input %d", input))
	}
	if len(parts) == 0 {
		return ""
	}
	return strings.Join(parts, " ") + ": "
}

// ResolutionError indicates that data needed to resolve an input or command
// could not be obtained
type ResolutionError struct {
	Input   int
	Command int
	Err     error
}

func (e ResolutionError) Error() string {
	return fmt.Sprintf("resolution failed: %s%v", location(e.Input, e.Command), e.Err)
}

func (e ResolutionError) Unwrap() error { return e.Err }

func (ResolutionError) Is(target error) bool {
	return target == ErrResolution
}

func newResolutionError(input int, command int, err error) error {
	return ResolutionError{Input: input, Command: command, Err: err}
}

// ValidationError indicates a structural problem with the transaction
type ValidationError struct {
	Input   int
	Command int
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s%v", location(e.Input, e.Command), e.Err)
}

func (e ValidationError) Unwrap() error { return e.Err }

func (ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func newValidationError(input int, command int, err error) error {
	return ValidationError{Input: input, Command: command, Err: err}
}

// LimitExceededError indicates that a protocol limit would be violated
type LimitExceededError struct {
	Limit  string
	Max    int
	Actual int
	Input  int
	Err    error
}

func (e LimitExceededError) Error() string {
	return fmt.Sprintf(
		"%s%v: %s is %d, got %d",
		location(e.Input, -1),
		e.Err,
		e.Limit,
		e.Max,
		e.Actual,
	)
}

func (e LimitExceededError) Unwrap() error { return e.Err }

func (LimitExceededError) Is(target error) bool {
	return target == ErrLimitExceeded
}
