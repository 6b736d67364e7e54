// Package system implements the always-on System module: boot banner,
// device identity and the restart entry point.
package system

import (
	"crypto/rand"
	"fmt"
	"net"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"xeweos/internal/module"
	"xeweos/internal/output"
	"xeweos/internal/parser"
	"xeweos/internal/version"
)

// KeyDeviceName is the store key holding the device name.
const KeyDeviceName = "dname"

const (
	defaultRandomBytes = 16
	maxRandomBytes     = 1024
	timeLayout         = "2006-01-02 15:04:05"
)

// Options configures the System module.
type Options struct {
	// DefaultName is offered when the user is asked to name the device.
	DefaultName string
	// MAC is the station MAC address the uid is derived from.
	MAC string
}

// System owns the device name and the restart path.
type System struct {
	*module.Module

	opts   Options
	booted time.Time
}

// New creates the System module.
func New(env *module.Env, opts Options) *System {
	if opts.DefaultName == "" {
		opts.DefaultName = "xewe"
	}
	s := &System{opts: opts, booted: env.Now()}
	s.Module = module.New(env, module.Spec{
		Name:              "System",
		Description:       "Stores integral commands and routines",
		NamespaceKey:      "sys",
		RequiresInitSetup: true,
		HasCommands:       true,
	}, module.Hooks{
		Required: s.banner,
		Init:     s.askDeviceName,
		Status:   s.status,
	})
	s.addCommands()
	return s
}

func (s *System) addCommands() {
	s.AddCommand(module.Command{
		Name:        "restart",
		Description: "Restart the device",
		Handler:     func(string) { s.Restart() },
	})
	s.AddCommand(module.Command{
		Name:        "reboot",
		Description: "Restart the device",
		Handler:     func(string) { s.Restart() },
	})
	s.AddCommand(module.Command{
		Name:        "info",
		Description: "Build and runtime info",
		Handler:     func(string) { s.Console().Println(s.Info()) },
	})
	s.AddCommand(module.Command{
		Name:        "uid",
		Description: "Device UID derived from the base MAC",
		Handler:     func(string) { s.printUID() },
	})
	s.AddCommand(module.Command{
		Name:        "time",
		Description: "Print the current time",
		Handler: func(string) {
			s.Console().Println(s.Env().Now().Format(timeLayout))
		},
	})
	s.AddCommand(module.Command{
		Name:        "uptime",
		Description: "Time since boot",
		Handler: func(string) {
			s.Console().Println("uptime " + FormatUptime(s.Uptime()))
		},
	})
	s.AddCommand(module.Command{
		Name:        "random",
		Description: "Print N random bytes as hex",
		SampleUsage: "Sample Use: $system random 16",
		ArgCount:    1,
		Handler:     s.printRandom,
	})
	s.AddCommand(module.Command{
		Name:        "name",
		Description: "Rename the device",
		SampleUsage: `Sample Use: $system name "kitchen light"`,
		ArgCount:    1,
		Handler:     s.rename,
	})
}

func (s *System) banner() {
	s.Console().PrintHeader("XeWe OS" + output.SectionSeparator +
		version.RepositoryURL + output.SectionSeparator +
		"Version " + version.Version + "\n" +
		"Build Timestamp " + version.BuildDate)
}

func (s *System) askDeviceName() {
	name, _ := s.Console().PromptLine("Device name", s.Env().Timeout(), s.opts.DefaultName)
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.opts.DefaultName
	}
	s.Store().WriteString(s.NamespaceKey(), KeyDeviceName, name)
	s.Console().Println("Device name: " + name)
}

func (s *System) rename(args string) {
	fields, err := parser.SplitArgs(args)
	if err != nil || len(fields) != 1 || strings.TrimSpace(fields[0]) == "" {
		s.Console().Println("Name can't be empty")
		return
	}
	s.Store().WriteString(s.NamespaceKey(), KeyDeviceName, fields[0])
	s.Console().Println("Device name set to '" + fields[0] + "'")
}

func (s *System) printUID() {
	mac, err := net.ParseMAC(s.opts.MAC)
	if err != nil {
		s.Console().Println("MAC unavailable")
		s.Logger().Warn("Unparseable MAC", "mac", s.opts.MAC, "error", err)
		return
	}
	s.Console().Println(fmt.Sprintf("base_mac %X", []byte(mac)))
	s.Console().Println("uid " + UID(mac).String())
}

func (s *System) printRandom(args string) {
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n <= 0 || n > maxRandomBytes {
		n = defaultRandomBytes
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		s.Console().Println("random source failed")
		s.Logger().Error("crypto/rand read failed", "error", err)
		return
	}
	s.Console().Println(fmt.Sprintf("%X", buf))
}

func (s *System) status() string {
	return "Device " + s.DeviceName() + "\nUptime " + FormatUptime(s.Uptime())
}

// DeviceName returns the persisted device name, or "" before init setup.
func (s *System) DeviceName() string {
	return s.Store().ReadString(s.NamespaceKey(), KeyDeviceName, "")
}

// Uptime returns the time since this System was constructed.
func (s *System) Uptime() time.Duration {
	return s.Env().Now().Sub(s.booted)
}

// Info returns the build and runtime summary printed by $system info.
func (s *System) Info() string {
	var b strings.Builder
	b.WriteString(version.GetDetailedVersion())
	fmt.Fprintf(&b, "\nCores %d", runtime.NumCPU())
	if s.opts.MAC != "" {
		b.WriteString("\nMAC " + strings.ToUpper(s.opts.MAC))
	}
	return b.String()
}

// Restart announces the reboot and asks the host to restart.
func (s *System) Restart() {
	s.Console().PrintHeader("Rebooting")
	s.Env().Restarter.Restart()
}

// UID derives a stable name-based UUID from a hardware address.
func UID(mac net.HardwareAddr) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, mac)
}

// FormatUptime renders d as "<d>d <h>h <m>m <s>s".
func FormatUptime(d time.Duration) string {
	secs := int64(d / time.Second)
	return fmt.Sprintf("%dd %dh %dm %ds", secs/86400, secs%86400/3600, secs%3600/60, secs%60)
}
