// Package blocklist filters result hosts against a domains.txt file, one
// domain per line. A listed domain blocks itself and every subdomain.
package blocklist

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// List is an immutable set of blocked domains.
type List struct {
	domains map[string]struct{}
}

// New creates a list from already normalized domain names.
func New(domains []string) *List {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = normalize(d)
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return &List{domains: set}
}

// Load reads a domains.txt file. Blank lines and # comments are ignored.
func Load(path string) (*List, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening blocklist: %w", err)
	}
	defer f.Close()

	var domains []string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		domains = append(domains, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading blocklist %s: %w", path, err)
	}

	return New(domains), nil
}

// Len returns the number of blocked domains.
func (l *List) Len() int { return len(l.domains) }

// Blocked reports whether host or any of its parent domains is listed.
func (l *List) Blocked(host string) bool {
	host = normalize(host)
	for host != "" {
		if _, ok := l.domains[host]; ok {
			return true
		}
		i := strings.IndexByte(host, '.')
		if i < 0 {
			return false
		}
		host = host[i+1:]
	}
	return false
}

func normalize(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	host = strings.TrimSuffix(host, ".")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
