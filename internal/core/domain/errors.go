package domain

import (
	"errors"
	"fmt"
	"maps"
)

// Code is a stable, machine-readable result code attached to every
// failure of a ledger operation. HTTP and log output key on it.
type Code string

// Recoverable codes describe an expected business outcome the caller can
// react to (retry later, pick another amount, stop calling).
const (
	CodeAlreadyInitialized  Code = "ALREADY_INITIALIZED"
	CodeCampaignEnded       Code = "CAMPAIGN_ENDED"
	CodeCampaignStillActive Code = "CAMPAIGN_STILL_ACTIVE"
	CodeGoalNotReached      Code = "GOAL_NOT_REACHED"
	CodeGoalReached         Code = "GOAL_REACHED"
	CodeOverflow            Code = "OVERFLOW"
	CodeInvalidHardCap      Code = "INVALID_HARD_CAP"
	CodeHardCapExceeded     Code = "HARD_CAP_EXCEEDED"
	CodeRateLimitExceeded   Code = "RATE_LIMIT_EXCEEDED"
	CodeContractPaused      Code = "CONTRACT_PAUSED"
	CodeInvalidLimit        Code = "INVALID_LIMIT"
)

// Fatal codes describe a call that should never have been made in the
// current state, or a broken collaborator.
const (
	CodeNotActive           Code = "NOT_ACTIVE"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeBelowMinimum        Code = "BELOW_MINIMUM"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeNotWhitelisted      Code = "NOT_WHITELISTED"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeNotFound            Code = "NOT_FOUND"
	CodeTransferFailed      Code = "TRANSFER_FAILED"
	CodeInternal            Code = "INTERNAL"
)

// Fatal reports whether the code belongs to the fatal class. Unknown codes
// are treated as fatal.
func (c Code) Fatal() bool {
	switch c {
	case CodeAlreadyInitialized, CodeCampaignEnded, CodeCampaignStillActive,
		CodeGoalNotReached, CodeGoalReached, CodeOverflow, CodeInvalidHardCap,
		CodeHardCapExceeded, CodeRateLimitExceeded, CodeContractPaused, CodeInvalidLimit:
		return false
	default:
		return true
	}
}

// Error is the single error type returned by ledger operations. Two
// errors are equal under errors.Is when their codes match, so the
// package-level sentinels can be used as targets.
type Error struct {
	Code     Code
	Message  string
	Metadata map[string]string
	Cause    error
}

// New returns an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an error with the given code that wraps cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// WithMetadata returns a copy of e carrying the given metadata pair.
func (e *Error) WithMetadata(key, value string) *Error {
	cp := *e
	cp.Metadata = maps.Clone(e.Metadata)
	if cp.Metadata == nil {
		cp.Metadata = make(map[string]string, 1)
	}
	cp.Metadata[key] = value
	return &cp
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the code of err, or CodeInternal when err does not carry
// one. A nil error has no code.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Sentinels for errors.Is comparisons.
var (
	ErrAlreadyInitialized  = New(CodeAlreadyInitialized, "campaign already initialized")
	ErrCampaignEnded       = New(CodeCampaignEnded, "campaign has ended")
	ErrCampaignStillActive = New(CodeCampaignStillActive, "campaign is still active")
	ErrGoalNotReached      = New(CodeGoalNotReached, "goal not reached")
	ErrGoalReached         = New(CodeGoalReached, "goal reached")
	ErrOverflow            = New(CodeOverflow, "arithmetic overflow")
	ErrInvalidHardCap      = New(CodeInvalidHardCap, "hard cap must be zero or at least the goal")
	ErrHardCapExceeded     = New(CodeHardCapExceeded, "hard cap reached")
	ErrRateLimitExceeded   = New(CodeRateLimitExceeded, "contribution rate limit exceeded")
	ErrContractPaused      = New(CodeContractPaused, "campaign is paused")
	ErrInvalidLimit        = New(CodeInvalidLimit, "value out of allowed range")

	ErrNotActive           = New(CodeNotActive, "campaign is not active")
	ErrUnauthorized        = New(CodeUnauthorized, "caller is not authorized")
	ErrBelowMinimum        = New(CodeBelowMinimum, "amount below minimum")
	ErrInvalidAmount       = New(CodeInvalidAmount, "amount must be positive")
	ErrInvalidArgument     = New(CodeInvalidArgument, "invalid argument")
	ErrNotWhitelisted      = New(CodeNotWhitelisted, "address is not whitelisted")
	ErrInsufficientBalance = New(CodeInsufficientBalance, "insufficient balance")
	ErrNotFound            = New(CodeNotFound, "campaign not found")
	ErrTransferFailed      = New(CodeTransferFailed, "asset transfer failed")
)
