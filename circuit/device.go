package circuit

import (
	"fmt"
	"strconv"
	"strings"
)

// Device names where a circuit's parameters live.
type Device string

// Host is main memory, the only device this runtime evaluates on.
const Host Device = "cpu"

// ParseDevice accepts "cpu", "host", "cuda", "cuda:N" and "gpu".
func ParseDevice(s string) (Device, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "" || s == "cpu" || s == "host":
		return Host, nil
	case s == "cuda" || s == "gpu":
		return Device(s), nil
	case strings.HasPrefix(s, "cuda:"):
		if n, err := strconv.Atoi(s[len("cuda:"):]); err != nil || n < 0 {
			return "", fmt.Errorf("%w: %q", ErrUnknownDevice, s)
		}
		return Device(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDevice, s)
	}
}

// Available reports whether parameters can be placed on d.
func (d Device) Available() bool { return d == Host }

// To moves the circuit to device d.
func (c *Circuit) To(d Device) error {
	if !d.Available() {
		return fmt.Errorf("%w: %q (circuit stays on %q)", ErrDeviceUnavailable, d, c.Device)
	}
	c.Device = d

	return nil
}
