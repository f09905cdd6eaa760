// Package netid answers network-identity questions for the predicate
// library: CIDR containment and the host's outbound address.
package netid

import (
	"fmt"
	"net"
)

// Contains reports whether addr falls inside the network defined by the
// pattern/mask pair, e.g. Contains("10.0.0.0", "255.255.255.0", "10.0.0.5").
func Contains(pattern, mask, addr string) (bool, error) {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false, fmt.Errorf("invalid address %q", addr)
	}
	network := net.ParseIP(pattern)
	if network == nil {
		return false, fmt.Errorf("invalid network pattern %q", pattern)
	}
	maskIP := net.ParseIP(mask)
	if maskIP == nil {
		return false, fmt.Errorf("invalid netmask %q", mask)
	}

	m := net.IPMask(maskIP)
	if v4 := maskIP.To4(); v4 != nil {
		m = net.IPMask(v4)
	}
	block := &net.IPNet{IP: network.Mask(m), Mask: m}
	return block.Contains(ip), nil
}

// LocalAddr returns the preferred outbound IP address of this host. The UDP
// dial never sends a packet; it only forces route selection.
func LocalAddr() (string, error) {
	conn, err := net.Dial("udp", "8.8.8.8:53")
	if err != nil {
		return "", fmt.Errorf("determine outbound address: %w", err)
	}
	defer conn.Close()
	return conn.LocalAddr().(*net.UDPAddr).IP.String(), nil
}
