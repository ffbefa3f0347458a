package util

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"path"
	"strings"
)

// HostKey joins hostname and route as a slash-separated path, hostname first.
// The joined path is cleaned; a trailing slash on route is kept so "/blog" and
// "/blog/" stay distinct keys.
func HostKey(hostname, route string) string {
	k := path.Join(hostname, route)
	if strings.HasSuffix(route, "/") && !strings.HasSuffix(k, "/") {
		k += "/"
	}
	return k
}

// NormalizeHost lower-cases host and strips any port.
//
//	"Example.COM:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
func NormalizeHost(host string) string {
	host = strings.ToLower(strings.TrimSpace(host))
	if host == "" {
		return ""
	}
	if h, _, err := net.SplitHostPort(host); err == nil {
		if strings.Contains(h, ":") {
			return "[" + h + "]"
		}
		return h
	}
	return host
}

// Redact returns a short stable digest of k (first 16 hex chars of SHA-256),
// for logging keys that may carry hostnames or user paths.
func Redact(k string) string {
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}
