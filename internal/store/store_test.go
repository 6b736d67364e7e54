package store

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Backend {
	t.Helper()
	bolt, err := OpenBolt(filepath.Join(t.TempDir(), "xewe.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = bolt.Close() })

	return map[string]Backend{
		"memory": NewMemoryBackend(),
		"bolt":   bolt,
	}
}

func TestBackendRoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, found, err := backend.Get("wf", "ssid")
			require.NoError(t, err)
			assert.False(t, found)

			require.NoError(t, backend.Put("wf", "ssid", []byte("home")))
			require.NoError(t, backend.Put("sys", "dname", []byte("desk")))

			v, found, err := backend.Get("wf", "ssid")
			require.NoError(t, err)
			assert.True(t, found)
			assert.Equal(t, "home", string(v))

			require.NoError(t, backend.Delete("wf", "ssid"))
			require.NoError(t, backend.Delete("missing", "key"))
			_, found, err = backend.Get("wf", "ssid")
			require.NoError(t, err)
			assert.False(t, found)

			dump, err := backend.Dump()
			require.NoError(t, err)
			assert.Equal(t, map[string]map[string]string{"sys": {"dname": "desk"}}, dump)

			require.NoError(t, backend.Clear())
			dump, err = backend.Dump()
			require.NoError(t, err)
			assert.Empty(t, dump)
		})
	}
}

func TestBoltPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "xewe.db")

	first, err := OpenBolt(path)
	require.NoError(t, err)
	NewPrefs(first).WriteBool("sys", "not_first_boot", true)
	require.NoError(t, first.Close())

	second, err := OpenBolt(path)
	require.NoError(t, err)
	defer second.Close()

	assert.Equal(t, path, second.Path())
	assert.True(t, NewPrefs(second).ReadBool("sys", "not_first_boot", false))
}

func TestPrefsTypedValues(t *testing.T) {
	prefs := NewMemoryPrefs()

	assert.False(t, prefs.ReadBool("btn", "is_enabled", false))
	assert.Equal(t, "fallback", prefs.ReadString("btn", "btn_cfg_0", "fallback"))
	assert.Equal(t, uint64(7), prefs.ReadUint("btn", "btn_count", 7))

	prefs.WriteBool("btn", "is_enabled", true)
	prefs.WriteString("btn", "btn_cfg_0", `4 "$system info" pullup on_press 50`)
	prefs.WriteUint("btn", "btn_count", 1)

	assert.True(t, prefs.ReadBool("btn", "is_enabled", false))
	assert.Equal(t, `4 "$system info" pullup on_press 50`, prefs.ReadString("btn", "btn_cfg_0", ""))
	assert.Equal(t, uint64(1), prefs.ReadUint("btn", "btn_count", 0))

	prefs.Remove("btn", "btn_count")
	assert.Equal(t, uint64(0), prefs.ReadUint("btn", "btn_count", 0))
}

func TestPrefsUnparsableValueYieldsDefault(t *testing.T) {
	prefs := NewMemoryPrefs()
	prefs.WriteString("wf", "is_enabled", "maybe")
	prefs.WriteString("btn", "btn_count", "-3")

	assert.True(t, prefs.ReadBool("wf", "is_enabled", true))
	assert.Equal(t, uint64(2), prefs.ReadUint("btn", "btn_count", 2))
}

func TestPrefsBackendFailureYieldsDefault(t *testing.T) {
	backend := NewMemoryBackend()
	prefs := NewPrefs(backend)
	prefs.WriteBool("sys", "init_complete", true)
	require.NoError(t, backend.Close())

	assert.False(t, prefs.ReadBool("sys", "init_complete", false))
	assert.Equal(t, "d", prefs.ReadString("sys", "dname", "d"))

	// writes after a failure are dropped, not panics
	prefs.WriteBool("sys", "init_complete", false)
	prefs.EraseAll()

	_, _, err := backend.Get("sys", "init_complete")
	assert.True(t, errors.Is(err, ErrClosed))
}

func TestPrefsEraseAll(t *testing.T) {
	prefs := NewMemoryPrefs()
	prefs.WriteBool("sys", "not_first_boot", true)
	prefs.WriteString("wf", "ssid", "home")

	prefs.EraseAll()

	assert.False(t, prefs.ReadBool("sys", "not_first_boot", false))
	assert.Equal(t, "", prefs.ReadString("wf", "ssid", ""))
}

func TestDumpYAML(t *testing.T) {
	backend := NewMemoryBackend()

	out, err := DumpYAML(backend)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", out)

	require.NoError(t, backend.Put("wf", "ssid", []byte("home")))
	require.NoError(t, backend.Put("sys", "dname", []byte("desk")))

	out, err = DumpYAML(backend)
	require.NoError(t, err)
	assert.Equal(t, "sys:\n    dname: desk\nwf:\n    ssid: home\n", out)
}
