package codec

import (
	"errors"

	"positioning-bridge/internal/bridgeerr"
)

// EncodeError is the wire form of a rejected command or an error event.
func EncodeError(err error) Object {
	o := Object{
		"code":    string(bridgeerr.CodeOf(err)),
		"message": err.Error(),
	}
	var be *bridgeerr.Error
	if !errors.As(err, &be) {
		return o
	}
	if be.Kind != "" {
		o["kind"] = be.Kind
		o["id"] = be.ID
	}
	if be.Code == bridgeerr.CodeSDKOperation {
		o["sdkCode"] = be.SDKCode
	}
	return o
}
