// Package machineid derives a stable identifier for the local machine.
//
// The identifier binds activation-code redemptions and break-glass challenges
// to one machine. It is a SHA-256 digest over hardware factors (primary MAC
// address, hostname, platform), so it survives restarts without persisting
// anything, and two machines practically never collide.
package machineid

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"os"
	"runtime"
	"strings"
	"sync"
)

// Provider yields the identifier of the machine the process runs on.
type Provider interface {
	MachineID() string
}

// fingerprintProvider computes the fingerprint once and caches it; the
// underlying factors do not change during the process lifetime.
type fingerprintProvider struct {
	once sync.Once
	id   string
}

// NewProvider creates a Provider backed by the local hardware fingerprint.
func NewProvider() Provider {
	return &fingerprintProvider{}
}

func (p *fingerprintProvider) MachineID() string {
	p.once.Do(func() {
		p.id = fingerprint()
	})
	return p.id
}

// staticProvider returns a fixed identifier. Used by tests and by tooling
// that needs to act on behalf of another machine.
type staticProvider struct {
	id string
}

// NewStatic creates a Provider that always returns the given identifier.
func NewStatic(id string) Provider {
	return &staticProvider{id: id}
}

func (p *staticProvider) MachineID() string {
	return p.id
}

// fingerprint combines hardware factors into a hex-encoded SHA-256 digest.
// Factors that cannot be read fall back to fixed sentinels; the tool must
// keep working on machines where interface enumeration is restricted.
func fingerprint() string {
	factors := []string{
		primaryMAC(),
		hostname(),
		runtime.GOOS,
		runtime.GOARCH,
	}

	sum := sha256.Sum256([]byte(strings.Join(factors, "|")))
	return hex.EncodeToString(sum[:])
}

// primaryMAC returns the MAC address of the first up, non-loopback interface,
// falling back to any interface with a hardware address.
func primaryMAC() string {
	interfaces, err := net.Interfaces()
	if err != nil {
		return "unknown-mac"
	}

	for _, iface := range interfaces {
		if iface.Flags&net.FlagLoopback != 0 || iface.Flags&net.FlagUp == 0 {
			continue
		}
		if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
			return mac
		}
	}

	for _, iface := range interfaces {
		if mac := iface.HardwareAddr.String(); mac != "" && mac != "00:00:00:00:00:00" {
			return mac
		}
	}

	return "unknown-mac"
}

func hostname() string {
	name, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}

	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return "unknown-host"
	}
	return name
}
