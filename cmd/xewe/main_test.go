package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xeweos/internal/config"
	"xeweos/internal/output"
	"xeweos/internal/store"
	"xeweos/internal/transport"
)

func withConfig(t *testing.T, c *config.Config, memory bool) {
	t.Helper()
	prevCfg, prevEphemeral := cfg, ephemeral
	cfg, ephemeral = c, memory
	t.Cleanup(func() { cfg, ephemeral = prevCfg, prevEphemeral })
}

func TestOpenBackendCreatesStoreDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "xewe.db")
	withConfig(t, &config.Config{StorePath: path}, false)

	backend, err := openBackend()
	require.NoError(t, err)
	defer backend.Close()

	require.NoError(t, backend.Put("sys", "dname", []byte("desk")))
	assert.FileExists(t, path)
}

func TestOpenBackendEphemeral(t *testing.T) {
	withConfig(t, &config.Config{StorePath: filepath.Join(t.TempDir(), "unused.db")}, true)

	backend, err := openBackend()
	require.NoError(t, err)
	defer backend.Close()

	assert.IsType(t, &store.MemoryBackend{}, backend)
	assert.NoFileExists(t, cfg.StorePath)
}

func TestNewPrinterFramesOnlyInteractiveOutput(t *testing.T) {
	prev := frameStyle
	frameStyle = lipgloss.NewStyle().Transform(strings.ToUpper)
	t.Cleanup(func() { frameStyle = prev })

	interactive := output.NewCaptureBuffer()
	newPrinter(interactive, true).Header("ready")
	assert.Contains(t, interactive.String(), "READY")

	piped := output.NewCaptureBuffer()
	newPrinter(piped, false).Header("ready")
	assert.Contains(t, piped.String(), "ready")
	assert.NotContains(t, piped.String(), "READY")
}

func TestStopWhenInputEndsWaitsForPendingLines(t *testing.T) {
	src := transport.NewScannerSource(strings.NewReader("$system info\n"))
	console := transport.NewConsole(src, output.NewPrinter(output.Silent()))
	defer console.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go stopWhenInputEnds(ctx, console, cancel)

	require.Eventually(t, console.HasLine, time.Second, 5*time.Millisecond)
	<-console.Done()
	time.Sleep(2 * drainPoll)
	assert.NoError(t, ctx.Err())

	assert.Equal(t, "$system info", console.ReadLine())
	require.Eventually(t, func() bool { return ctx.Err() != nil }, time.Second, 5*time.Millisecond)
}
