// Package main provides the XeWe OS host entry point.
// XeWe OS runs a set of cooperative device modules behind a line-oriented
// command console, with simulated pins and radio on a desktop host.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"xeweos/internal/config"
	"xeweos/internal/controller"
	"xeweos/internal/hal"
	"xeweos/internal/logger"
	"xeweos/internal/output"
	"xeweos/internal/store"
	"xeweos/internal/transport"
	"xeweos/internal/version"
)

// drainPoll spaces the checks for unread lines once piped input has ended.
const drainPoll = 50 * time.Millisecond

// frameStyle colors header and table borders on an interactive terminal.
var frameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

var (
	logLevel  string
	logFile   string
	storePath string
	configDir string
	ephemeral bool

	v   = viper.New()
	cfg *config.Config
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "xewe",
	Short: "XeWe OS - modular device runtime with a command console",
	Long: `XeWe OS runs the device modules (system, storage, pins, buttons, WiFi and
the web interface) in a cooperative loop and accepts "$group command args"
lines on the console.`,
	Run: runDevice,
}

// runCmd is the explicit form of the default behavior
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Boot the device modules and serve the console",
	Run:   runDevice,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println(version.GetFormattedVersion())
	},
}

var nvsCmd = &cobra.Command{
	Use:   "nvs",
	Short: "Inspect the persistent store",
}

var nvsDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Print every stored namespace as YAML",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		backend, err := store.OpenBolt(cfg.StorePath)
		if err != nil {
			return err
		}
		defer backend.Close()
		dump, err := store.DumpYAML(backend)
		if err != nil {
			return err
		}
		fmt.Print(dump)
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&logLevel, "log-level", "", "Set log level (debug|info|warn|error) [default: info]")
	flags.StringVar(&logFile, "log-file", "", "Write logs to file instead of stderr")
	flags.StringVar(&storePath, "store", "", "Path of the persistent store file")
	flags.StringVar(&configDir, "config", "", "Directory holding xewe.yaml and .env")
	flags.BoolVar(&ephemeral, "ephemeral", false, "Keep all state in memory; nothing survives exit")

	bindings := map[string]string{
		config.KeyLogLevel:  "log-level",
		config.KeyLogFile:   "log-file",
		config.KeyStorePath: "store",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			fmt.Fprintf(os.Stderr, "Error binding %s flag: %v\n", flag, err)
			os.Exit(1)
		}
	}

	nvsCmd.AddCommand(nvsDumpCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(nvsCmd)

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	var dirs []string
	if configDir != "" {
		dirs = append(dirs, configDir)
	}
	var err error
	cfg, err = config.Load(v, dirs...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Configure(cfg.LogLevel, cfg.LogFile, false); err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring logger: %v\n", err)
		os.Exit(1)
	}
}

func runDevice(_ *cobra.Command, _ []string) {
	logger.Info("Starting XeWe OS", "version", version.GetBaseVersion())
	if err := version.Validate(); err != nil {
		logger.Warn("Unusable build stamp", "error", err)
	}

	backend, err := openBackend()
	if err != nil {
		logger.Fatal("Failed to open store", "error", err)
	}
	defer backend.Close()

	console, err := openConsole()
	if err != nil {
		logger.Fatal("Failed to open console", "error", err)
	}
	defer console.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go stopWhenInputEnds(ctx, console, stop)

	settings := controller.Settings{
		DeviceName:        cfg.DeviceName,
		PromptTimeout:     cfg.PromptTimeout,
		WebAddr:           cfg.WebAddr,
		ReconnectInterval: cfg.ReconnectInterval,
	}
	deps := controller.Deps{
		Store:   store.NewPrefs(backend),
		Console: console,
		Board:   hal.NewSimBoard(),
		Radio:   hal.NewSimRadio(cfg.SimNetworks, cfg.SimIP, cfg.SimMAC),
	}

	for boot := 1; ; boot++ {
		logger.Info("Booting", "boot", boot)
		c := controller.New(settings, deps)
		c.Begin()
		err := c.Run(ctx)
		c.Close()
		if errors.Is(err, controller.ErrRestart) {
			continue
		}
		if err != nil {
			logger.Fatal("Controller stopped", "error", err)
		}
		logger.Info("Shutting down")
		return
	}
}

func openBackend() (store.Backend, error) {
	if ephemeral {
		logger.Info("Using in-memory store")
		return store.NewMemoryBackend(), nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.StorePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	logger.Info("Using store", "path", cfg.StorePath)
	return store.OpenBolt(cfg.StorePath)
}

// openConsole uses line editing on a terminal and plain line reads otherwise.
func openConsole() (*transport.Console, error) {
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		src, err := transport.NewReadlineSource("")
		if err != nil {
			return nil, err
		}
		return transport.NewConsole(src, newPrinter(src.Writer(), true)), nil
	}
	return transport.NewConsole(transport.NewScannerSource(os.Stdin), newPrinter(os.Stdout, false)), nil
}

// newPrinter frames boxed output only when a person is watching; piped
// output stays free of escape codes.
func newPrinter(w io.Writer, interactive bool) *output.Printer {
	opts := []output.Option{output.WithWriter(w)}
	if interactive {
		opts = append(opts, output.WithFrameStyle(frameStyle))
	}
	return output.NewPrinter(opts...)
}

// stopWhenInputEnds cancels the run once the console source has ended and
// every line it delivered has been handed to the parser.
func stopWhenInputEnds(ctx context.Context, console *transport.Console, stop context.CancelFunc) {
	select {
	case <-ctx.Done():
		return
	case <-console.Done():
	}
	ticker := time.NewTicker(drainPoll)
	defer ticker.Stop()
	for console.HasLine() {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
	// let the pass that took the last line finish
	select {
	case <-ctx.Done():
	case <-ticker.C:
	}
	stop()
}
