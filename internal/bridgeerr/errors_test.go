package bridgeerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nativeErr struct {
	code int
	msg  string
}

func (e nativeErr) Error() string { return e.msg }
func (e nativeErr) SDKCode() int  { return e.code }

func TestClassesMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		code     Code
	}{
		{"malformed", Malformed("center", "expected object"), ErrMalformedInput, CodeMalformedInput},
		{"enum", InvalidEnum("motionMode", "FLYING"), ErrInvalidEnumValue, CodeInvalidEnumValue},
		{"validation", Validation("requestDirections", "poi %s not cached", "p1"), ErrValidation, CodeValidation},
		{"cache miss", CacheMiss("building", "B1"), ErrCacheMiss, CodeCacheMiss},
		{"sdk", SDK("fetchBuildings", errors.New("unauthorized")), ErrSDKOperation, CodeSDKOperation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.err, tt.sentinel)
			assert.Equal(t, tt.code, CodeOf(tt.err))
			wrapped := fmt.Errorf("dispatch: %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.code, CodeOf(wrapped))
		})
	}
}

func TestInvalidKeepsCause(t *testing.T) {
	err := Invalid("startPositioning", Malformed("buildingIdentifier", "missing"))
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, ErrMalformedInput)
	assert.Equal(t, CodeValidation, CodeOf(err))
	assert.Contains(t, err.Error(), "startPositioning")
	assert.Contains(t, err.Error(), "buildingIdentifier")
}

func TestCacheMissNamesEntity(t *testing.T) {
	err := CacheMiss("floor", "F7")
	assert.Equal(t, "floor", err.Kind)
	assert.Equal(t, "F7", err.ID)
	assert.Equal(t, "floor F7 not found, fetch it first", err.Error())
}

func TestSDKKeepsNativeCodeAndMessage(t *testing.T) {
	cause := nativeErr{code: 401, msg: "invalid credentials"}
	err := SDK("fetchBuildings", cause)
	assert.Equal(t, 401, err.SDKCode)
	assert.Equal(t, "fetchBuildings: invalid credentials", err.Error())

	var native nativeErr
	require.ErrorAs(t, err, &native)
	assert.Equal(t, cause, native)
}

func TestCodeOfUnclassified(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
}
