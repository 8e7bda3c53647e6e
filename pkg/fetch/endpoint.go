package fetch

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Endpoint is one remote operation. Path may hold {name} placeholders that
// are filled from the call parameters.
type Endpoint struct {
	Root          Root
	Method        string
	Path          string
	Authenticated bool
}

// Get returns an authenticated GET endpoint.
func Get(root Root, path string) Endpoint {
	return Endpoint{Root: root, Method: http.MethodGet, Path: path, Authenticated: true}
}

// URL joins base and the expanded path. Placeholder values are path-escaped;
// an absent or empty value is ErrMissingPathParam.
func (e Endpoint) URL(base string, params map[string]string) (string, error) {
	var b strings.Builder
	rest := e.Path
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			b.WriteString(rest)
			break
		}
		end := strings.IndexByte(rest[open:], '}')
		if end < 0 {
			return "", fmt.Errorf("%w: unterminated placeholder in %q", ErrInvalidRequestInput, e.Path)
		}
		name := rest[open+1 : open+end]
		value := params[name]
		if value == "" {
			return "", fmt.Errorf("%w: %s", ErrMissingPathParam, name)
		}
		b.WriteString(rest[:open])
		b.WriteString(url.PathEscape(value))
		rest = rest[open+end+1:]
	}

	path := b.String()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return strings.TrimRight(base, "/") + path, nil
}

func (e Endpoint) method() string {
	if e.Method == "" {
		return http.MethodGet
	}
	return e.Method
}
