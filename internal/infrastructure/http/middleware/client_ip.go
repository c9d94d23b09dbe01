package middleware

import (
	"fmt"
	"net"
	"strings"

	"github.com/labstack/echo/v4"
)

// IPExtractor decides what c.RealIP() returns, and so which client a rate
// limit applies to. Without trusted proxies X-Forwarded-For and X-Real-IP are
// ignored and the peer address is used. Entries are CIDRs or single IPs.
func IPExtractor(trustedProxies []string) (echo.IPExtractor, error) {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect(), nil
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, p := range trustedProxies {
		ipNet, err := parseTrusted(p)
		if err != nil {
			return nil, err
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...), nil
}

func parseTrusted(p string) (*net.IPNet, error) {
	p = strings.TrimSpace(p)
	if !strings.Contains(p, "/") {
		ip := net.ParseIP(p)
		if ip == nil {
			return nil, fmt.Errorf("invalid trusted proxy %q", p)
		}
		if ip.To4() != nil {
			return &net.IPNet{IP: ip.To4(), Mask: net.CIDRMask(32, 32)}, nil
		}
		return &net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)}, nil
	}
	_, ipNet, err := net.ParseCIDR(p)
	if err != nil {
		return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
	}
	return ipNet, nil
}
