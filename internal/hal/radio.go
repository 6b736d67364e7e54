package hal

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Radio errors.
var (
	ErrNetworkNotFound = errors.New("network not found")
	ErrAuthFailed      = errors.New("authentication failed")
)

// Network is one scan result.
type Network struct {
	SSID   string
	RSSI   int
	Secure bool
}

// Radio is the station-mode WiFi interface.
type Radio interface {
	Join(ssid, password string) error
	Disconnect() error
	Connected() bool
	Scan() ([]Network, error)
	// SSID returns the joined network, or "" when disconnected.
	SSID() string
	LocalIP() string
	MAC() string
	SetHostname(name string)
}

// SimRadio is an in-memory Radio over a fixed set of reachable networks.
type SimRadio struct {
	mu       sync.Mutex
	networks map[string]string
	ip       string
	mac      string
	hostname string
	joined   string
}

var _ Radio = (*SimRadio)(nil)

// NewSimRadio creates a radio that can reach networks (ssid to password).
func NewSimRadio(networks map[string]string, ip, mac string) *SimRadio {
	copied := make(map[string]string, len(networks))
	for ssid, psw := range networks {
		copied[ssid] = psw
	}
	return &SimRadio{networks: copied, ip: ip, mac: mac}
}

// Join implements Radio.
func (r *SimRadio) Join(ssid, password string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	want, ok := r.networks[ssid]
	if !ok {
		r.joined = ""
		return fmt.Errorf("join %q: %w", ssid, ErrNetworkNotFound)
	}
	if want != password {
		r.joined = ""
		return fmt.Errorf("join %q: %w", ssid, ErrAuthFailed)
	}
	r.joined = ssid
	return nil
}

// Disconnect implements Radio.
func (r *SimRadio) Disconnect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.joined = ""
	return nil
}

// Drop simulates losing the access point.
func (r *SimRadio) Drop() {
	_ = r.Disconnect()
}

// Connected implements Radio.
func (r *SimRadio) Connected() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joined != ""
}

// Scan implements Radio. Results are sorted by SSID.
func (r *SimRadio) Scan() ([]Network, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Network, 0, len(r.networks))
	for ssid, psw := range r.networks {
		out = append(out, Network{SSID: ssid, Secure: psw != ""})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SSID < out[j].SSID })
	for i := range out {
		out[i].RSSI = -40 - 3*i
	}
	return out, nil
}

// SSID implements Radio.
func (r *SimRadio) SSID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.joined
}

// LocalIP implements Radio.
func (r *SimRadio) LocalIP() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.joined == "" {
		return ""
	}
	return r.ip
}

// MAC implements Radio.
func (r *SimRadio) MAC() string {
	return r.mac
}

// SetHostname implements Radio.
func (r *SimRadio) SetHostname(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hostname = name
}

// Hostname returns the last hostname set.
func (r *SimRadio) Hostname() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostname
}
