// Package privacy keeps client addresses out of logs in identifiable form.
package privacy

import (
	"net/netip"
)

// AnonymizeIP masks an address before it is logged: IPv4 to its /24,
// IPv6 to its /48. Returns "unknown" for empty input and "invalid" for
// anything unparseable.
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
