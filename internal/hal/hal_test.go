package hal

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePinMode(t *testing.T) {
	for _, name := range []string{"in", "out", "in_pullup", "IN_PULLDOWN"} {
		mode, ok := ParsePinMode(name)
		require.True(t, ok, name)
		assert.Equal(t, strings.ToLower(name), mode.String())
	}
	_, ok := ParsePinMode("analog")
	assert.False(t, ok)
}

func TestSimBoardDigital(t *testing.T) {
	b := NewSimBoard()

	high, err := b.Read(4)
	require.NoError(t, err)
	assert.False(t, high, "floating input reads low")

	require.NoError(t, b.SetMode(4, ModeInputPullUp))
	high, _ = b.Read(4)
	assert.True(t, high)

	b.SetInput(4, false)
	high, _ = b.Read(4)
	assert.False(t, high)
	b.ReleaseInput(4)
	high, _ = b.Read(4)
	assert.True(t, high)

	require.NoError(t, b.SetMode(5, ModeOutput))
	require.NoError(t, b.Write(5, true))
	high, _ = b.Read(5)
	assert.True(t, high)

	_, err = b.Read(MaxPin + 1)
	assert.True(t, errors.Is(err, ErrInvalidPin))
}

func TestSimBoardPWM(t *testing.T) {
	b := NewSimBoard()

	assert.True(t, errors.Is(b.PWMWrite(2, 10), ErrPWMNotActive))
	assert.True(t, errors.Is(b.PWMAttach(2, 0, 8), ErrPWMParameters))
	assert.True(t, errors.Is(b.PWMAttach(2, 1000, 17), ErrPWMParameters))

	require.NoError(t, b.PWMAttach(2, 1000, 8))
	require.NoError(t, b.PWMWrite(2, 1000))
	duty, on := b.Duty(2)
	assert.True(t, on)
	assert.Equal(t, uint32(255), duty)

	require.NoError(t, b.PWMDetach(2))
	_, on = b.Duty(2)
	assert.False(t, on)
}

func TestSimBoardI2CScan(t *testing.T) {
	b := NewSimBoard()
	b.AddI2CDevice(0x3C)
	b.AddI2CDevice(0x10)
	b.AddI2CDevice(0x7F)

	found, err := b.I2CScan(21, 22)
	require.NoError(t, err)
	assert.Equal(t, []uint8{0x10, 0x3C}, found)
}

func TestSimRadio(t *testing.T) {
	r := NewSimRadio(map[string]string{"home": "secret", "cafe": ""}, "192.168.1.50", "AA:BB:CC:DD:EE:FF")

	assert.True(t, errors.Is(r.Join("nowhere", ""), ErrNetworkNotFound))
	assert.True(t, errors.Is(r.Join("home", "wrong"), ErrAuthFailed))
	assert.False(t, r.Connected())
	assert.Equal(t, "", r.LocalIP())

	require.NoError(t, r.Join("home", "secret"))
	assert.True(t, r.Connected())
	assert.Equal(t, "home", r.SSID())
	assert.Equal(t, "192.168.1.50", r.LocalIP())

	r.Drop()
	assert.False(t, r.Connected())

	networks, err := r.Scan()
	require.NoError(t, err)
	assert.Equal(t, []Network{
		{SSID: "cafe", RSSI: -40, Secure: false},
		{SSID: "home", RSSI: -43, Secure: true},
	}, networks)
}
