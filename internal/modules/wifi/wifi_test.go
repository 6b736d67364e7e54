package wifi_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xeweos/internal/hal"
	"xeweos/internal/module"
	"xeweos/internal/modules/wifi"
	"xeweos/internal/parser"
	"xeweos/internal/testutils"
)

const interval = 10 * time.Second

func newRadio() *hal.SimRadio {
	return hal.NewSimRadio(map[string]string{"home": "secret", "office": ""}, "192.168.1.20", "24:6F:28:AA:BB:CC")
}

func newWifi(h *testutils.Harness, radio *hal.SimRadio) (*wifi.Wifi, *parser.CommandParser) {
	w := wifi.New(h.Env, radio, wifi.Options{
		ReconnectInterval: interval,
		PromptRounds:      3,
		Hostname:          func() string { return "desk" },
	})
	return w, parser.New(h.Env)
}

// connected boots a Wifi module through first-boot setup onto "home".
func connected(t *testing.T) (*testutils.Harness, *hal.SimRadio, *wifi.Wifi, *parser.CommandParser) {
	t.Helper()
	h := testutils.NewHarness()
	radio := newRadio()
	w, p := newWifi(h, radio)
	h.Console.AnswerYesNo(true)
	h.Console.AnswerLines("0", "secret")
	w.Begin()
	p.Begin()
	require.True(t, w.Connected())
	h.Console.ResetOutput()
	return h, radio, w, p
}

func TestFirstBootSelectsNetwork(t *testing.T) {
	h := testutils.NewHarness()
	radio := newRadio()
	w, _ := newWifi(h, radio)
	h.Console.AnswerYesNo(true)
	h.Console.AnswerLines("0", "secret")

	w.Begin()

	assert.True(t, w.Connected())
	assert.Equal(t, "home", w.SSID())
	assert.Equal(t, "192.168.1.20", w.LocalIP())
	assert.Equal(t, "desk", radio.Hostname())
	assert.True(t, w.InitSetupComplete())
	assert.Equal(t, "home", h.Store.ReadString("wf", wifi.KeySSID, ""))
	assert.Equal(t, "secret", h.Store.ReadString("wf", wifi.KeyPassword, ""))

	assert.True(t, h.Console.Contains("Stored WiFi credentials not found"))
	assert.True(t, h.Console.Contains("0. home\n1. office"))
	assert.True(t, h.Console.Contains("Joined home\nLocal ip: 192.168.1.20\nMac: 24:6F:28:AA:BB:CC"))
}

func TestFirstBootExitDisablesModule(t *testing.T) {
	h := testutils.NewHarness()
	w, _ := newWifi(h, newRadio())
	h.Console.AnswerYesNo(true)
	h.Console.AnswerLines("-1")

	w.Begin()

	assert.True(t, h.Console.Contains("Terminated WiFi setup"))
	assert.True(t, w.IsDisabled())
	assert.False(t, h.Store.ReadBool("wf", module.KeyIsEnabled, true))
	assert.False(t, h.Store.ReadBool("wf", module.KeyInitComplete, true))
}

func TestPromptTimeoutTerminatesSetup(t *testing.T) {
	h := testutils.NewHarness()
	w, _ := newWifi(h, newRadio())
	h.Console.AnswerYesNo(true)

	w.Begin()

	assert.True(t, h.Console.Contains("Terminated WiFi setup"))
	assert.True(t, w.IsDisabled())
}

func TestWrongPasswordThenRetry(t *testing.T) {
	h := testutils.NewHarness()
	w, _ := newWifi(h, newRadio())
	h.Console.AnswerYesNo(true)
	h.Console.AnswerLines("0", "nope", "-2", "0", "secret")

	w.Begin()

	assert.True(t, h.Console.Contains("Unable to join home"))
	assert.True(t, w.Connected())
	assert.Equal(t, "secret", h.Store.ReadString("wf", wifi.KeyPassword, ""))
}

func TestInvalidChoiceAndCustomSSID(t *testing.T) {
	h := testutils.NewHarness()
	w, _ := newWifi(h, newRadio())
	h.Console.AnswerYesNo(true)
	h.Console.AnswerLines("7", "-3", "office", "")

	w.Begin()

	assert.True(t, h.Console.Contains("Invalid choice"))
	assert.Equal(t, "office", w.SSID())
	assert.Contains(t, h.Console.Prompts(), "Enter custom SSID")
	assert.Contains(t, h.Console.Prompts(), "Selected: 'office'\nPassword")
}

func TestPromptRoundsAreBounded(t *testing.T) {
	h := testutils.NewHarness()
	w, _ := newWifi(h, newRadio())
	h.Console.AnswerYesNo(true)
	h.Console.AnswerLines("x", "x", "x", "0", "secret")

	w.Begin()

	assert.True(t, w.IsDisabled())
	assert.True(t, h.Console.Contains("Terminated WiFi setup"))
}

func TestRegularBootUsesStoredCredentials(t *testing.T) {
	h, _, _, _ := connected(t)

	next := h.Reboot()
	radio := newRadio()
	w, _ := newWifi(next, radio)
	w.Begin()

	assert.True(t, w.Connected())
	assert.Empty(t, next.Console.Prompts())
	assert.True(t, next.Console.Contains("Stored WiFi credentials found"))
}

func TestRegularBootWithStaleCredentialsDoesNotPrompt(t *testing.T) {
	h, _, _, _ := connected(t)
	h.Store.WriteString("wf", wifi.KeyPassword, "rotated")

	next := h.Reboot()
	w, _ := newWifi(next, newRadio())
	w.Begin()

	assert.False(t, w.Connected())
	assert.Equal(t, []string{"Would you like to reset credentials?"}, next.Console.Prompts())
	assert.True(t, next.Console.Contains("Stored WiFi credentials not valid."))
	assert.True(t, next.Console.Contains("Use '$wifi reset' to reset credentials"))
	assert.True(t, w.IsEnabled())
}

func TestLoopReconnectsOncePerInterval(t *testing.T) {
	h, radio, w, _ := connected(t)

	radio.Drop()
	w.Loop()
	assert.True(t, h.Console.Contains("Wifi connection lost"))

	h.Clock.Advance(interval / 2)
	w.Loop()
	assert.False(t, w.Connected())

	h.Clock.Advance(interval / 2)
	w.Loop()
	assert.True(t, w.Connected())
	assert.True(t, h.Console.Contains("Reconnected to home"))
}

func TestManualDisconnectStaysDown(t *testing.T) {
	h, _, w, p := connected(t)

	require.NoError(t, p.Parse("$wifi disconnect"))
	assert.True(t, h.Console.Contains("WiFi disconnected"))

	for i := 0; i < 3; i++ {
		h.Clock.Advance(interval)
		w.Loop()
	}
	assert.False(t, w.Connected())

	require.NoError(t, p.Parse("$wifi connect"))
	assert.True(t, w.Connected())
}

func TestScanCommand(t *testing.T) {
	h, _, _, p := connected(t)

	require.NoError(t, p.Parse("$wifi scan"))

	assert.Equal(t, "Scanning WiFi networks...\n0. home\n1. office\n", h.Console.Output())
}

func TestStatus(t *testing.T) {
	_, radio, w, _ := connected(t)

	assert.Equal(t, "Wifi module enabled\nConnected to home\nLocal ip: 192.168.1.20\nMac: 24:6F:28:AA:BB:CC", w.Status(false))

	radio.Drop()
	assert.Equal(t, "Wifi module enabled\ndisconnected", w.Status(false))
}

func TestResetForgetsCredentials(t *testing.T) {
	h, _, w, p := connected(t)

	require.NoError(t, p.Parse("$wifi reset"))

	assert.False(t, w.Connected())
	assert.Equal(t, "", h.Store.ReadString("wf", wifi.KeySSID, ""))
	assert.Equal(t, "", h.Store.ReadString("wf", wifi.KeyPassword, ""))
	assert.True(t, w.IsEnabled())
	assert.False(t, w.InitSetupComplete())
	assert.Equal(t, 1, h.Restarter.Count())
}

func TestCommandsWhileDisabled(t *testing.T) {
	h, _, w, p := connected(t)
	h.Console.AnswerYesNo(true)
	require.NoError(t, p.Parse("$wifi disable"))
	require.True(t, w.IsDisabled())
	h.Console.ResetOutput()

	require.NoError(t, p.Parse("$wifi scan"))

	assert.Equal(t, "Wifi module disabled; use $wifi enable\n", h.Console.Output())
}
