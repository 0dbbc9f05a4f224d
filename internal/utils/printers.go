package utils

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// --- Utility Functions ---

func DetectLocalIP() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", err
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			return ipnet.IP.String(), nil
		}
	}
	return "", fmt.Errorf("no local IPv4 address found")
}

// SubnetOf returns the first three octets of an IPv4 address.
func SubnetOf(ip string) string {
	parts := strings.Split(ip, ".")
	if len(parts) < 3 {
		return ip
	}
	return strings.Join(parts[:3], ".")
}

// SubnetHosts lists the 254 host addresses of a /24.
func SubnetHosts(subnet string) []string {
	hosts := make([]string, 0, 254)
	for i := 1; i <= 254; i++ {
		hosts = append(hosts, subnet+"."+strconv.Itoa(i))
	}
	return hosts
}

// Probe reports whether a TCP connection to ip:port succeeds within timeout.
func Probe(ctx context.Context, ip string, port int, timeout time.Duration) bool {
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(ip, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
