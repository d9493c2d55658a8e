// Package featureflags evaluates runtime feature switches.
package featureflags

import (
	"fmt"
	"hash/fnv"
	"sort"
	"strconv"
	"strings"
	"sync"
)

// Flags known to the application.
const (
	SocialLogin           = "social_login"
	RealtimeNotifications = "realtime_notifications"
)

// Defaults apply when FEATURE_FLAGS does not mention a flag.
var Defaults = map[string]string{
	SocialLogin:           "on",
	RealtimeNotifications: "on",
}

// Manager evaluates feature flags defined in a simple key=value list.
// Example: "social_login=off,realtime_notifications=25%"
type Manager struct {
	mu    sync.RWMutex
	flags map[string]string
}

// NewManager creates a manager from Defaults overlaid with a comma-separated config string.
func NewManager(raw string) *Manager {
	out := make(map[string]string, len(Defaults))
	for k, v := range Defaults {
		out[k] = v
	}
	for k, v := range parse(raw) {
		out[k] = v
	}
	return &Manager{flags: out}
}

func parse(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(pair), "=", 2)
		if len(parts) != 2 {
			continue
		}
		key, value := normalize(parts[0]), normalize(parts[1])
		if key == "" || !validValue(value) {
			continue
		}
		out[key] = value
	}
	return out
}

func validValue(v string) bool {
	switch v {
	case "on", "true", "1", "off", "false", "0":
		return true
	}
	if strings.HasSuffix(v, "%") {
		_, err := strconv.Atoi(strings.TrimSuffix(v, "%"))
		return err == nil
	}
	return false
}

// Set overrides one flag at runtime.
func (m *Manager) Set(name, value string) error {
	key, v := normalize(name), normalize(value)
	if key == "" {
		return fmt.Errorf("flag name is required")
	}
	if !validValue(v) {
		return fmt.Errorf("invalid value %q for flag %q", value, name)
	}
	m.mu.Lock()
	m.flags[key] = v
	m.mu.Unlock()
	return nil
}

// Enabled returns whether a flag is enabled for a given user.
// Supported values are on/true/1, off/false/0 and N% (deterministic per-user rollout).
func (m *Manager) Enabled(name string, userID uint) bool {
	if m == nil {
		return false
	}
	m.mu.RLock()
	value, ok := m.flags[normalize(name)]
	m.mu.RUnlock()
	if !ok {
		return false
	}

	switch value {
	case "on", "true", "1":
		return true
	case "off", "false", "0":
		return false
	}

	pct, err := strconv.Atoi(strings.TrimSuffix(value, "%"))
	switch {
	case err != nil || pct <= 0:
		return false
	case pct >= 100:
		return true
	case userID == 0:
		return false
	}
	return rolloutBucket(name, userID) < pct
}

// Raw returns a copy of configured flags.
func (m *Manager) Raw() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.flags))
	for k, v := range m.flags {
		out[k] = v
	}
	return out
}

// Names returns the configured flag names in sorted order.
func (m *Manager) Names() []string {
	raw := m.Raw()
	names := make([]string, 0, len(raw))
	for k := range raw {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Snapshot returns evaluated flag status for one user.
func (m *Manager) Snapshot(userID uint) map[string]bool {
	names := m.Names()
	out := make(map[string]bool, len(names))
	for _, name := range names {
		out[name] = m.Enabled(name, userID)
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func rolloutBucket(name string, userID uint) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(fmt.Sprintf("%s:%d", normalize(name), userID)))
	return int(h.Sum32() % 100)
}
