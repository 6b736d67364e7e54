package serial_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"xeweos/internal/modules/serial"
	"xeweos/internal/testutils"
)

func TestResetFlushesPendingInput(t *testing.T) {
	h := testutils.NewHarness()
	port := serial.New(h.Env)
	port.Begin()
	h.Console.Feed("$wifi connect", "$system info")

	port.Reset(false, false, true)

	assert.False(t, h.Console.HasLine())
	assert.Equal(t, 1, h.Console.Flushes())
	assert.True(t, port.IsEnabled())
}

func TestSerialHasNoCommands(t *testing.T) {
	h := testutils.NewHarness()
	port := serial.New(h.Env)

	assert.False(t, port.HasCommands())
	assert.Empty(t, port.CommandGroup().Commands)
	assert.Zero(t, port.ID())
}
