package controller_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xeweos/internal/controller"
	"xeweos/internal/hal"
	"xeweos/internal/module"
	"xeweos/internal/store"
	"xeweos/internal/testutils"
)

type rig struct {
	prefs   *store.Prefs
	console *testutils.FakeConsole
	board   *hal.SimBoard
	radio   *hal.SimRadio
	clock   *testutils.FakeClock
}

func newRig() *rig {
	return &rig{
		prefs:   store.NewMemoryPrefs(),
		console: testutils.NewFakeConsole(),
		board:   hal.NewSimBoard(),
		radio:   hal.NewSimRadio(map[string]string{"home": "secret"}, "10.0.0.7", "24:6F:28:00:00:01"),
		clock:   testutils.NewFakeClock(),
	}
}

// boot builds a controller over the rig. A fresh console is used on every
// boot so assertions only see that boot's output.
func (r *rig) boot(t *testing.T) *controller.Controller {
	t.Helper()
	r.console = testutils.NewFakeConsole()
	c := controller.New(controller.Settings{
		DeviceName:        "xewe",
		PromptTimeout:     10 * time.Millisecond,
		WebAddr:           "127.0.0.1:0",
		ReconnectInterval: time.Second,
		IdleSleep:         time.Millisecond,
	}, controller.Deps{
		Store:   r.prefs,
		Console: r.console,
		Board:   r.board,
		Radio:   r.radio,
		Clock:   r.clock,
	})
	t.Cleanup(c.Close)
	return c
}

// firstBoot runs the full first-boot setup, accepting every module.
func (r *rig) firstBoot(t *testing.T) *controller.Controller {
	t.Helper()
	c := r.boot(t)
	r.console.AnswerYesNo(true, true, true, true)
	r.console.AnswerLines("desk", "0", "secret")
	c.Begin()
	return c
}

func TestModuleOrder(t *testing.T) {
	c := newRig().boot(t)

	var names []string
	for _, m := range c.Env().Registry.Modules() {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{
		"Serial_Port", "Nvs", "System", "Command_Parser",
		"Pins", "Buttons", "Wifi", "Web_Interface",
	}, names)
}

func TestFirstBootRestartsAfterSetup(t *testing.T) {
	r := newRig()
	c := r.firstBoot(t)

	assert.True(t, r.console.Contains("Initial Setup Complete"))
	assert.True(t, r.console.Contains("Rebooting"))
	assert.True(t, c.RestartRequested())
	assert.ErrorIs(t, c.Run(context.Background()), controller.ErrRestart)

	assert.Equal(t, "desk", c.System.DeviceName())
	assert.Equal(t, "desk", r.radio.Hostname())
	assert.True(t, c.Wifi.Connected())
	assert.NotEmpty(t, c.Web.Addr())
	assert.True(t, r.console.Contains("Web Interface now available at:\nhttp://10.0.0.7:"))
}

func TestSecondBootDoesNotPrompt(t *testing.T) {
	r := newRig()
	first := r.firstBoot(t)
	first.Close()

	c := r.boot(t)
	c.Begin()

	assert.Empty(t, r.console.Prompts())
	assert.True(t, r.console.Contains("System Setup Complete"))
	assert.False(t, r.console.Contains("Initial Setup Complete"))
	assert.False(t, c.RestartRequested())
	assert.True(t, c.Wifi.Connected())
	assert.True(t, c.Web.IsEnabled())
}

func TestWebRequiresWifi(t *testing.T) {
	r := newRig()
	c := r.boot(t)
	// pins, buttons accepted; wifi declined; web never reaches its prompt
	r.console.AnswerYesNo(true, true, false)
	r.console.AnswerLines("desk")
	c.Begin()

	assert.True(t, c.Wifi.IsDisabled())
	assert.True(t, c.Web.IsDisabled())
	assert.True(t, r.console.Contains("Web_Interface Module requires Wifi module; use $wifi enable"))
	assert.Empty(t, c.Web.Addr())
	assert.False(t, r.prefs.ReadBool("wb", module.KeyIsEnabled, true))
}

func TestLoopDispatchesConsoleLine(t *testing.T) {
	r := newRig()
	r.firstBoot(t).Close()
	c := r.boot(t)
	c.Begin()
	r.console.ResetOutput()

	r.console.Feed("$pins gpio_write 2 1")
	c.Loop()

	assert.True(t, r.console.Contains("ok"))
	high, err := r.board.Read(2)
	require.NoError(t, err)
	assert.True(t, high)
	assert.False(t, r.console.HasLine())
}

func TestModuleLoopsRunBeforeConsoleLine(t *testing.T) {
	r := newRig()
	r.firstBoot(t).Close()
	c := r.boot(t)
	c.Begin()

	srv := httptest.NewServer(c.Web.Handler())
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/cmd?c=" + "%24system+uptime")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	r.console.ResetOutput()
	r.console.Feed("$system time")
	c.Loop()

	out := r.console.Output()
	web := strings.Index(out, "Got cmd from web:\n$system uptime")
	uptime := strings.Index(out, "uptime ")
	clock := strings.Index(out, "2025-01-01")
	require.NotEqual(t, -1, web)
	require.NotEqual(t, -1, clock)
	assert.Less(t, web, uptime)
	assert.Less(t, uptime, clock)
}

func TestRunStopsOnRestartCommand(t *testing.T) {
	r := newRig()
	r.firstBoot(t).Close()
	c := r.boot(t)
	c.Begin()

	r.console.Feed("$system restart")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	assert.ErrorIs(t, c.Run(ctx), controller.ErrRestart)
	assert.NoError(t, ctx.Err())
}

func TestRunReturnsWhenContextEnds(t *testing.T) {
	r := newRig()
	r.firstBoot(t).Close()
	c := r.boot(t)
	c.Begin()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.NoError(t, c.Run(ctx))
}

func TestDisablingWifiCascadesToWeb(t *testing.T) {
	r := newRig()
	r.firstBoot(t).Close()
	c := r.boot(t)
	c.Begin()

	r.console.AnswerYesNo(true)
	r.console.Feed("$wifi disable")
	c.Loop()

	assert.True(t, c.Wifi.IsDisabled())
	assert.False(t, r.prefs.ReadBool("wb", module.KeyIsEnabled, true))
	assert.False(t, r.prefs.ReadBool("wb", module.KeyInitComplete, true))
	assert.Empty(t, c.Web.Addr())
	assert.True(t, c.RestartRequested())
}
