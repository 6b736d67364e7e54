// Package wifi implements the station-mode WiFi module: credential setup,
// joining, scanning and background reconnects.
package wifi

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"xeweos/internal/hal"
	"xeweos/internal/module"
)

// Store keys.
const (
	KeySSID     = "ssid"
	KeyPassword = "psw"
)

const (
	defaultReconnectInterval = 30 * time.Second
	defaultPromptRounds      = 5
	storedJoinAttempts       = 3

	selectionPrompt = "\nSelect network by number; or enter\n-1 to exit\n-2 to rescan\n-3 to enter custom SSID\nSelection"
)

// Options configures the Wifi module.
type Options struct {
	// ReconnectInterval spaces background reconnect attempts.
	ReconnectInterval time.Duration
	// PromptRounds bounds the scan/select/password rounds of one connect.
	PromptRounds int
	// Hostname supplies the name announced to the network.
	Hostname func() string
}

type promptResult int

const (
	promptOK promptResult = iota
	promptExit
	promptRescan
	promptInvalid
)

// Wifi is the WiFi module.
type Wifi struct {
	*module.Module

	radio hal.Radio
	opts  Options

	lost        bool
	manual      bool
	lastAttempt time.Time
}

// New creates the Wifi module over radio.
func New(env *module.Env, radio hal.Radio, opts Options) *Wifi {
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = defaultReconnectInterval
	}
	if opts.PromptRounds <= 0 {
		opts.PromptRounds = defaultPromptRounds
	}
	w := &Wifi{radio: radio, opts: opts}
	w.Module = module.New(env, module.Spec{
		Name:              "Wifi",
		Description:       "Allows to connect to a local WiFi network",
		NamespaceKey:      "wf",
		RequiresInitSetup: true,
		CanBeDisabled:     true,
		HasCommands:       true,
	}, module.Hooks{
		Required: w.prepare,
		Init:     w.initialConnect,
		Regular:  func() { w.Connect(false) },
		Loop:     w.poll,
		Reset:    w.forgetCredentials,
		Disable:  func() { w.disconnect(false) },
		Status:   w.status,
	})
	w.AddCommand(module.Command{
		Name:        "connect",
		Description: "Connect or reconnect to WiFi",
		Handler:     func(string) { w.connectCommand() },
	})
	w.AddCommand(module.Command{
		Name:        "disconnect",
		Description: "Disconnect from WiFi",
		Handler: func(string) {
			if w.disabledNotice() {
				return
			}
			w.manual = true
			w.disconnect(true)
		},
	})
	w.AddCommand(module.Command{
		Name:        "scan",
		Description: "List available WiFi networks",
		Handler: func(string) {
			if !w.disabledNotice() {
				w.Scan(true)
			}
		},
	})
	return w
}

// Connected reports whether the radio is joined to a network.
func (w *Wifi) Connected() bool {
	return w.IsEnabled() && w.radio.Connected()
}

// SSID returns the joined network, or "" when disconnected.
func (w *Wifi) SSID() string {
	if !w.Connected() {
		return ""
	}
	return w.radio.SSID()
}

// LocalIP returns the station address, or "" when disconnected.
func (w *Wifi) LocalIP() string {
	if !w.Connected() {
		return ""
	}
	return w.radio.LocalIP()
}

func (w *Wifi) prepare() {
	if w.opts.Hostname != nil {
		if name := w.opts.Hostname(); name != "" {
			w.radio.SetHostname(name)
		}
	}
	w.disconnect(false)
}

func (w *Wifi) initialConnect() {
	if !w.Connect(true) {
		w.Disable(false, false)
	}
}

func (w *Wifi) connectCommand() {
	if w.disabledNotice() {
		return
	}
	w.manual = false
	if w.radio.Connected() {
		w.Console().Println("Connected to " + w.radio.SSID())
		return
	}
	w.Connect(true)
}

// Connect joins with the stored credentials and, when prompt is set, falls
// back to asking the user. Credentials entered at the prompt are persisted
// once they work.
func (w *Wifi) Connect(prompt bool) bool {
	if w.IsDisabled() {
		return false
	}
	if w.radio.Connected() {
		return true
	}
	console := w.Console()

	ssid, psw := w.credentials()
	if ssid != "" {
		console.Println("Stored WiFi credentials found")
		if w.join(ssid, psw, storedJoinAttempts) {
			return true
		}
		console.Println("Stored WiFi credentials not valid.")
		if !prompt {
			console.Println("Use '$wifi reset' to reset credentials")
		}
	} else {
		console.Println("Stored WiFi credentials not found")
		if !prompt {
			console.Println("Type '$wifi connect' to select a new network")
		}
	}
	if !prompt {
		return false
	}

	for round := 0; round < w.opts.PromptRounds; round++ {
		result, ssid, psw := w.promptCredentials()
		switch result {
		case promptExit:
			console.Println("Terminated WiFi setup")
			return false
		case promptRescan:
			continue
		case promptInvalid:
			console.Println("Invalid choice")
			continue
		}
		if w.join(ssid, psw, 1) {
			w.Store().WriteString(w.NamespaceKey(), KeySSID, ssid)
			w.Store().WriteString(w.NamespaceKey(), KeyPassword, psw)
			return true
		}
	}
	console.Println("Terminated WiFi setup")
	return false
}

func (w *Wifi) join(ssid, psw string, attempts int) bool {
	console := w.Console()
	for i := 0; i < attempts; i++ {
		console.Println("Joining " + ssid)
		err := w.radio.Join(ssid, psw)
		if err == nil {
			w.lost = false
			console.Println("Joined " + ssid + "\nLocal ip: " + w.radio.LocalIP() + "\nMac: " + w.radio.MAC())
			return true
		}
		w.Logger().Debug("Join failed", "ssid", ssid, "attempt", i+1, "error", err)
		console.Println("Unable to join " + ssid)
	}
	if attempts > 1 && console.PromptYesNo("Would you like to reset credentials?", w.Env().Timeout(), false) {
		w.forgetCredentials()
	}
	return false
}

func (w *Wifi) promptCredentials() (promptResult, string, string) {
	console := w.Console()
	timeout := w.Env().Timeout()

	networks := w.Scan(true)
	answer, ok := console.PromptLine(selectionPrompt, timeout, "-1")
	if !ok {
		return promptExit, "", ""
	}
	choice, err := strconv.Atoi(strings.TrimSpace(answer))
	if err != nil {
		return promptInvalid, "", ""
	}

	var ssid string
	switch {
	case choice == -1:
		return promptExit, "", ""
	case choice == -2:
		return promptRescan, "", ""
	case choice == -3:
		custom, ok := console.PromptLine("Enter custom SSID", timeout, "")
		if !ok {
			return promptExit, "", ""
		}
		if ssid = strings.TrimSpace(custom); ssid == "" {
			return promptInvalid, "", ""
		}
	case choice >= 0 && choice < len(networks):
		ssid = networks[choice]
	default:
		return promptInvalid, "", ""
	}

	psw, ok := console.PromptLine("Selected: '"+ssid+"'\nPassword", timeout, "")
	if !ok {
		return promptExit, "", ""
	}
	return promptOK, ssid, psw
}

// Scan lists the visible networks, deduplicated, in the radio's order.
func (w *Wifi) Scan(verbose bool) []string {
	if w.IsDisabled() {
		return nil
	}
	if verbose {
		w.Console().Println("Scanning WiFi networks...")
	}
	found, err := w.radio.Scan()
	if err != nil {
		w.Logger().Warn("Scan failed", "error", err)
		return nil
	}
	seen := make(map[string]bool, len(found))
	var ssids []string
	for _, n := range found {
		if n.SSID == "" || seen[n.SSID] {
			continue
		}
		seen[n.SSID] = true
		ssids = append(ssids, n.SSID)
	}
	if verbose {
		for i, ssid := range ssids {
			w.Console().Println(fmt.Sprintf("%d. %s", i, ssid))
		}
	}
	return ssids
}

func (w *Wifi) disconnect(verbose bool) {
	if !w.radio.Connected() {
		if verbose {
			w.Console().Println("Not connected to WiFi; use $wifi connect")
		}
		return
	}
	if err := w.radio.Disconnect(); err != nil {
		w.Logger().Warn("Disconnect failed", "error", err)
	}
	if verbose {
		w.Console().Println("WiFi disconnected")
	}
}

// poll retries the stored credentials at most once per reconnect interval
// while the link is down. It never prompts.
func (w *Wifi) poll() {
	if w.IsDisabled() || w.manual || w.radio.Connected() {
		w.lost = false
		return
	}
	now := w.Env().Now()
	if !w.lost {
		w.lost = true
		w.lastAttempt = now
		w.Console().Println("Wifi connection lost; retrying every " + w.opts.ReconnectInterval.String())
		return
	}
	if now.Sub(w.lastAttempt) < w.opts.ReconnectInterval {
		return
	}
	w.lastAttempt = now

	ssid, psw := w.credentials()
	if ssid == "" {
		return
	}
	if err := w.radio.Join(ssid, psw); err != nil {
		w.Logger().Debug("Reconnect failed", "ssid", ssid, "error", err)
		return
	}
	w.lost = false
	w.Console().Println("Reconnected to " + ssid)
}

func (w *Wifi) forgetCredentials() {
	w.Store().Remove(w.NamespaceKey(), KeySSID)
	w.Store().Remove(w.NamespaceKey(), KeyPassword)
	w.disconnect(false)
}

func (w *Wifi) credentials() (string, string) {
	ns := w.NamespaceKey()
	return w.Store().ReadString(ns, KeySSID, ""), w.Store().ReadString(ns, KeyPassword, "")
}

func (w *Wifi) status() string {
	if !w.Connected() {
		return "disconnected"
	}
	return "Connected to " + w.radio.SSID() + "\nLocal ip: " + w.radio.LocalIP() + "\nMac: " + w.radio.MAC()
}

func (w *Wifi) disabledNotice() bool {
	if w.IsEnabled() {
		return false
	}
	w.Console().Println("Wifi module disabled; use $wifi enable")
	return true
}
