package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/mezonai/jetton/jsonx"
)

// ErrorCode identifies a failure class observed by callers of an actor.
type ErrorCode string

const (
	// General errors
	ErrCodeInternal ErrorCode = "internal_error"

	// Message handling errors
	ErrCodeUnauthorized        ErrorCode = "unauthorized"
	ErrCodeInsufficientBalance ErrorCode = "insufficient_balance"
	ErrCodeInsufficientValue   ErrorCode = "insufficient_value"
	ErrCodeMalformedMessage    ErrorCode = "malformed_message"
	ErrCodeAddressMismatch     ErrorCode = "address_mismatch"
	ErrCodeWrongWorkchain      ErrorCode = "wrong_workchain"

	// Account command errors
	ErrCodeInvalidSeqno ErrorCode = "invalid_seqno"
	ErrCodeBadSignature ErrorCode = "bad_signature"
	ErrCodeExpired      ErrorCode = "expired"

	// Substrate errors
	ErrCodeAccountNotFound   ErrorCode = "account_not_found"
	ErrCodeUnknownGetMethod  ErrorCode = "unknown_get_method"
	ErrCodeInsufficientFunds ErrorCode = "insufficient_funds"
)

// Exit codes reported in transaction receipts.
const (
	ExitCodeOK                  = 0
	ExitCodeInsufficientFunds   = 37
	ExitCodeInvalidSeqno        = 33
	ExitCodeBadSignature        = 34
	ExitCodeExpired             = 35
	ExitCodeUnauthorized        = 73
	ExitCodeAddressMismatch     = 74
	ExitCodeWrongWorkchain      = 333
	ExitCodeInsufficientBalance = 706
	ExitCodeInsufficientValue   = 709
	ExitCodeAccountNotFound     = 404
	ExitCodeUnknownGetMethod    = 11
	ExitCodeMalformedMessage    = 0xffff
	ExitCodeInternal            = 1000
)

const (
	ErrMsgUnauthorized        = "Sender is not allowed to perform this operation"
	ErrMsgInsufficientBalance = "Jetton amount exceeds wallet balance"
	ErrMsgInsufficientValue   = "Attached value does not cover fees and forwarded amounts"
	ErrMsgMalformedMessage    = "Message body is malformed or has an unknown opcode"
	ErrMsgAddressMismatch     = "Sender does not match the derived address"
	ErrMsgWrongWorkchain      = "Destination is on another workchain"
	ErrMsgInvalidSeqno        = "Command seqno does not match the stored seqno"
	ErrMsgBadSignature        = "Command signature is invalid"
	ErrMsgExpired             = "Command is past its valid-until time"
	ErrMsgAccountNotFound     = "Account does not exist"
	ErrMsgUnknownGetMethod    = "Get-method is not defined for this contract"
	ErrMsgInsufficientFunds   = "Not enough native balance to send the message"
	ErrMsgInternal            = "Internal error while handling the message"
)

var exitCodes = map[ErrorCode]int{
	ErrCodeInternal:            ExitCodeInternal,
	ErrCodeUnauthorized:        ExitCodeUnauthorized,
	ErrCodeInsufficientBalance: ExitCodeInsufficientBalance,
	ErrCodeInsufficientValue:   ExitCodeInsufficientValue,
	ErrCodeMalformedMessage:    ExitCodeMalformedMessage,
	ErrCodeAddressMismatch:     ExitCodeAddressMismatch,
	ErrCodeWrongWorkchain:      ExitCodeWrongWorkchain,
	ErrCodeInvalidSeqno:        ExitCodeInvalidSeqno,
	ErrCodeBadSignature:        ExitCodeBadSignature,
	ErrCodeExpired:             ExitCodeExpired,
	ErrCodeAccountNotFound:     ExitCodeAccountNotFound,
	ErrCodeUnknownGetMethod:    ExitCodeUnknownGetMethod,
	ErrCodeInsufficientFunds:   ExitCodeInsufficientFunds,
}

// ContractError is what an actor handler returns to reject a message.
type ContractError struct {
	Code     ErrorCode `json:"code"`
	ExitCode int       `json:"exit_code"`
	Message  string    `json:"message"`
}

// Error implements the error interface
func (e *ContractError) Error() string {
	err, _ := jsonx.Marshal(ContractError{
		Code:     e.Code,
		ExitCode: e.ExitCode,
		Message:  e.Message,
	})
	return string(err)
}

// Is matches any ContractError with the same code, so sentinels work with errors.Is.
func (e *ContractError) Is(target error) bool {
	t, ok := target.(*ContractError)
	return ok && t.Code == e.Code
}

var (
	ErrUnauthorized        = NewError(ErrCodeUnauthorized, ErrMsgUnauthorized)
	ErrInsufficientBalance = NewError(ErrCodeInsufficientBalance, ErrMsgInsufficientBalance)
	ErrInsufficientValue   = NewError(ErrCodeInsufficientValue, ErrMsgInsufficientValue)
	ErrMalformedMessage    = NewError(ErrCodeMalformedMessage, ErrMsgMalformedMessage)
	ErrAddressMismatch     = NewError(ErrCodeAddressMismatch, ErrMsgAddressMismatch)
	ErrWrongWorkchain      = NewError(ErrCodeWrongWorkchain, ErrMsgWrongWorkchain)
	ErrInvalidSeqno        = NewError(ErrCodeInvalidSeqno, ErrMsgInvalidSeqno)
	ErrBadSignature        = NewError(ErrCodeBadSignature, ErrMsgBadSignature)
	ErrExpired             = NewError(ErrCodeExpired, ErrMsgExpired)
	ErrAccountNotFound     = NewError(ErrCodeAccountNotFound, ErrMsgAccountNotFound)
	ErrUnknownGetMethod    = NewError(ErrCodeUnknownGetMethod, ErrMsgUnknownGetMethod)
	ErrInsufficientFunds   = NewError(ErrCodeInsufficientFunds, ErrMsgInsufficientFunds)
	ErrInternal            = NewError(ErrCodeInternal, ErrMsgInternal)
)

// NewError creates a new ContractError and returns it as error interface
func NewError(code ErrorCode, message string) error {
	return &ContractError{
		Code:     code,
		ExitCode: exitCodes[code],
		Message:  message,
	}
}

// Errorf builds a ContractError with a formatted message.
func Errorf(code ErrorCode, format string, args ...interface{}) error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Malformed wraps a decoding failure as MalformedMessage, keeping the cause in the message.
func Malformed(cause error) error {
	if cause == nil {
		return nil
	}
	var ce *ContractError
	if stderrors.As(cause, &ce) {
		return cause
	}
	return Errorf(ErrCodeMalformedMessage, "%s: %v", ErrMsgMalformedMessage, cause)
}

// CodeOf returns the code carried by err, ErrCodeInternal for foreign errors and "" for nil.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var ce *ContractError
	if stderrors.As(err, &ce) {
		return ce.Code
	}
	return ErrCodeInternal
}

// ExitCodeOf maps err to the exit code recorded in receipts.
func ExitCodeOf(err error) int {
	if err == nil {
		return ExitCodeOK
	}
	var ce *ContractError
	if stderrors.As(err, &ce) {
		return ce.ExitCode
	}
	return ExitCodeInternal
}
