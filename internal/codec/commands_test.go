package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positioning-bridge/internal/bridgeerr"
	"positioning-bridge/internal/model"
)

func TestDecodeIdentifier(t *testing.T) {
	tests := []struct {
		name string
		args any
		want string
		err  error
	}{
		{"bare string", "B1", "B1", nil},
		{"bare number", 1234.0, "1234", nil},
		{"object", Object{"buildingIdentifier": "B2"}, "B2", nil},
		{"empty string", "", "", bridgeerr.ErrMalformedInput},
		{"missing", nil, "", bridgeerr.ErrMalformedInput},
		{"fractional number", 1.5, "", bridgeerr.ErrMalformedInput},
		{"object without id", Object{"name": "HQ"}, "", bridgeerr.ErrMalformedInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeIdentifier(tt.args, "buildingId", "buildingIdentifier")
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeToggle(t *testing.T) {
	for _, tt := range []struct {
		args any
		want bool
	}{
		{nil, true},
		{false, false},
		{Object{}, true},
		{Object{"enabled": false}, false},
	} {
		got, err := DecodeToggle(tt.args)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%v", tt.args)
	}
	_, err := DecodeToggle(Object{"enabled": "no"})
	assert.ErrorIs(t, err, bridgeerr.ErrMalformedInput)
}

func TestDecodeCacheKind(t *testing.T) {
	k, err := DecodeCacheKind(nil)
	require.NoError(t, err)
	assert.Empty(t, k)

	k, err = DecodeCacheKind(Object{"kind": "poi"})
	require.NoError(t, err)
	assert.Equal(t, "poi", k)

	_, err = DecodeCacheKind(7.0)
	assert.ErrorIs(t, err, bridgeerr.ErrMalformedInput)
}

func TestDecodeIconRequest(t *testing.T) {
	id, selected, err := DecodeIconRequest(Object{"categoryId": 9.0, "selected": true})
	require.NoError(t, err)
	assert.Equal(t, "9", id)
	assert.True(t, selected)

	_, _, err = DecodeIconRequest(Object{"selected": true})
	assert.ErrorIs(t, err, bridgeerr.ErrMalformedInput)
}

func TestDecodeGeofenceCheck(t *testing.T) {
	p := samplePoint()
	wrapped, err := DecodeGeofenceCheck(Object{"point": EncodePoint(p)})
	require.NoError(t, err)
	assert.Equal(t, p, wrapped)

	bare, err := DecodeGeofenceCheck(EncodePoint(p))
	require.NoError(t, err)
	assert.Equal(t, p, bare)
}

func TestEncodeGeofenceCheck(t *testing.T) {
	assert.Equal(t, Object{"isInsideGeofence": false}, EncodeGeofenceCheck(nil))
	inside := EncodeGeofenceCheck(&model.Geofence{ID: "G1", Name: "Lobby"})
	assert.Equal(t, Object{"identifier": "G1", "name": "Lobby"}, inside["geofence"])
}

func TestEncodeStopResult(t *testing.T) {
	assert.Equal(t, "Stopped Successfully", EncodeStopResult(true)["message"])
	assert.Equal(t, "Already disabled", EncodeStopResult(false)["message"])
	assert.Equal(t, true, EncodeStopResult(false)["success"])
}
