package notifications

import (
	"fmt"
	"net/url"
	"strings"
)

// BuildURL joins a base URL or bare domain with an endpoint path. The scheme
// defaults to https, exactly one slash separates the two parts, and query
// strings and fragments are dropped.
func BuildURL(base, endpoint string) (string, error) {
	base = strings.TrimSpace(base)
	if base == "" {
		return "", fmt.Errorf("build url: base is empty")
	}
	if !strings.Contains(base, "//") {
		base = "https://" + base
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("build url: %q has no host", base)
	}

	basePath := parsed.Path
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	if !strings.HasSuffix(basePath, "/") {
		basePath += "/"
	}
	if i := strings.IndexAny(endpoint, "?#"); i >= 0 {
		endpoint = endpoint[:i]
	}
	endpoint = strings.TrimLeft(endpoint, "/")

	joined := url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: basePath + endpoint}
	return joined.String(), nil
}
