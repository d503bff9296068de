package rdf

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"
)

// resolveIRI resolves a relative IRI against a base IRI according to RFC 3986.
func resolveIRI(baseStr, relative string) string {
	baseURL, err := url.Parse(baseStr)
	if err != nil {
		return joinIRI(baseStr, relative)
	}
	relURL, err := url.Parse(relative)
	if err != nil {
		return joinIRI(baseStr, relative)
	}
	// An absolute reference is returned as-is.
	if relURL.Scheme != "" {
		return relative
	}
	return baseURL.ResolveReference(relURL).String()
}

// ResolveIRI resolves relative against base. An empty base returns relative.
func ResolveIRI(base, relative string) string {
	if base == "" {
		return relative
	}
	return resolveIRI(base, relative)
}

func joinIRI(baseStr, relative string) string {
	if strings.HasSuffix(baseStr, "/") {
		return baseStr + relative
	}
	if lastSlash := strings.LastIndex(baseStr, "/"); lastSlash >= 0 {
		return baseStr[:lastSlash+1] + relative
	}
	return baseStr + "/" + relative
}

// FileURI returns the file:// URI of a filesystem path. Relative paths are
// made absolute first.
func FileURI(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	uri := (&url.URL{Scheme: "file", Path: slashed}).String()
	// url.URL drops the empty authority for paths without a host.
	if !strings.HasPrefix(uri, "file://") {
		uri = "file://" + strings.TrimPrefix(uri, "file:")
	}
	if strings.HasSuffix(path, string(filepath.Separator)) && !strings.HasSuffix(uri, "/") {
		uri += "/"
	}
	return uri
}

// FilePath converts a file:// URI to a local filesystem path.
func FilePath(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidIRI, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("%w: not a file URI: %s", ErrInvalidIRI, uri)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("%w: remote file URI: %s", ErrInvalidIRI, uri)
	}
	path := u.Path
	if runtime.GOOS == "windows" && len(path) > 2 && path[0] == '/' && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

// IsFileURI reports whether uri uses the file scheme.
func IsFileURI(uri string) bool {
	return strings.HasPrefix(uri, "file:")
}
