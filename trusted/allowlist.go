package trusted

import (
	"context"
	"net"
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const DefaultSafeHost = "localhost"

// Resolver returns the addresses of a host name.
type Resolver func(ctx context.Context, host string) ([]string, error)

// AllowList holds the caller hosts allowed to present trusted tokens. Entries
// are matched whole, case-insensitively. Name entries also match the addresses
// they resolved to when Resolve was called. It is read-only once built.
type AllowList struct {
	hosts map[string]struct{}
	addrs map[string]struct{}
}

// NewAllowList accepts hosts and ';' separated lists of hosts.
func NewAllowList(entries ...string) AllowList {
	hosts := map[string]struct{}{}
	for _, entry := range entries {
		for _, host := range strings.Split(entry, ";") {
			host = strings.ToLower(strings.TrimSpace(host))
			if host == "" {
				continue
			}
			if ip := net.ParseIP(host); ip != nil {
				host = ip.String()
			}
			hosts[host] = struct{}{}
		}
	}
	return AllowList{hosts: hosts, addrs: map[string]struct{}{}}
}

// Resolve looks up every name entry once. Names that fail to resolve are
// returned in the error and keep matching by name only.
func (l AllowList) Resolve(ctx context.Context, lookup Resolver) (AllowList, error) {
	res := AllowList{hosts: l.hosts, addrs: map[string]struct{}{}}
	var failed []string
	for host := range l.hosts {
		if host == DefaultSafeHost || net.ParseIP(host) != nil {
			continue
		}

		addrs, err := lookup(ctx, host)
		if err != nil {
			failed = append(failed, host)
			continue
		}
		for _, addr := range addrs {
			if ip := net.ParseIP(addr); ip != nil {
				res.addrs[ip.String()] = struct{}{}
			}
		}
	}

	if len(failed) > 0 {
		return res, errors.Errorf("unable to resolve %s", strings.Join(failed, ", "))
	}
	return res, nil
}

func (l AllowList) Allows(host string) bool {
	host = strings.ToLower(host)
	if host == "" {
		return false
	}
	ip := net.ParseIP(host)
	if ip != nil {
		host = ip.String()
	}

	if _, ok := l.hosts[host]; ok {
		return true
	}
	if ip == nil {
		return false
	}
	if _, ok := l.addrs[host]; ok {
		return true
	}

	_, local := l.hosts[DefaultSafeHost]
	return local && ip.IsLoopback()
}

func (l AllowList) Len() int { return len(l.hosts) }

// ProxyList holds the addresses of reverse proxies whose forwarding headers
// are believed.
type ProxyList []*net.IPNet

// NewProxyList accepts addresses and CIDR ranges.
func NewProxyList(entries ...string) (ProxyList, error) {
	var res ProxyList
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, errors.Errorf("invalid proxy address %q", entry)
			}
			bits := 8 * net.IPv6len
			if ip.To4() != nil {
				ip, bits = ip.To4(), 8*net.IPv4len
			}
			res = append(res, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
			continue
		}

		_, network, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid proxy range %q", entry)
		}
		res = append(res, network)
	}
	return res, nil
}

func (p ProxyList) Contains(host string) bool {
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	for _, network := range p {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

type peerKey struct{}

// CapturePeer keeps the transport address of the request before any middleware
// rewrites RemoteAddr from forwarding headers. It must run first.
func CapturePeer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), peerKey{}, r.RemoteAddr)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CallerHost returns the host part of the transport address of r, as captured
// by CapturePeer, or of RemoteAddr when nothing was captured.
func CallerHost(r *http.Request) string {
	addr, ok := r.Context().Value(peerKey{}).(string)
	if !ok {
		addr = r.RemoteAddr
	}
	return splitHost(addr)
}

// ForwardedHost returns the client named by the nearest proxy, or "".
func ForwardedHost(r *http.Request) string {
	if xrip := strings.TrimSpace(r.Header.Get("X-Real-IP")); xrip != "" {
		return xrip
	}
	xff := r.Header.Get("X-Forwarded-For")
	if xff == "" {
		return ""
	}
	hops := strings.Split(xff, ",")
	return strings.TrimSpace(hops[len(hops)-1])
}

func splitHost(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return strings.Trim(addr, "[]")
	}
	return host
}
