package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContractErrorMatchesByCode(t *testing.T) {
	err := Errorf(ErrCodeInsufficientBalance, "need %d, have %d", 10, 5)
	wrapped := fmt.Errorf("transfer: %w", err)

	assert.True(t, stderrors.Is(wrapped, ErrInsufficientBalance))
	assert.False(t, stderrors.Is(wrapped, ErrUnauthorized))
	assert.Equal(t, ErrCodeInsufficientBalance, CodeOf(wrapped))
	assert.Equal(t, ExitCodeInsufficientBalance, ExitCodeOf(wrapped))
}

func TestErrorIsJSON(t *testing.T) {
	assert.Equal(t,
		`{"code":"unauthorized","exit_code":73,"message":"Sender is not allowed to perform this operation"}`,
		ErrUnauthorized.Error())
}

func TestForeignErrors(t *testing.T) {
	assert.Equal(t, ErrorCode(""), CodeOf(nil))
	assert.Equal(t, ExitCodeOK, ExitCodeOf(nil))

	plain := stderrors.New("boom")
	assert.Equal(t, ErrCodeInternal, CodeOf(plain))
	assert.Equal(t, ExitCodeInternal, ExitCodeOf(plain))

	m := Malformed(plain)
	assert.True(t, stderrors.Is(m, ErrMalformedMessage))
	assert.Equal(t, ExitCodeMalformedMessage, ExitCodeOf(m))
	assert.Equal(t, ErrUnauthorized, Malformed(ErrUnauthorized))
	assert.Nil(t, Malformed(nil))
}
