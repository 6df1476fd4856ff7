// Package sanitize implements types.Sanitizer on top of
// go-playground/validator.
package sanitize

import (
	"html"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mesh-intelligence/commentary/pkg/types"
)

const (
	maxEmailBytes = 512
	maxURLBytes   = 4096
)

// Sanitizer validates emails and URLs and escapes HTML entities. The zero
// value is not usable; call New.
type Sanitizer struct {
	validate *validator.Validate
}

// New returns a Sanitizer. It is safe for concurrent use.
func New() *Sanitizer {
	return &Sanitizer{validate: validator.New(validator.WithRequiredStructEnabled())}
}

var _ types.Sanitizer = (*Sanitizer)(nil)

// Email returns the trimmed address, or "" when it is not a valid address.
func (s *Sanitizer) Email(v string) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxEmailBytes {
		return ""
	}
	if err := s.validate.Var(v, "email"); err != nil {
		return ""
	}
	return v
}

// URL returns an http or https URL, or "" when v is not one. A bare host
// such as "example.com/page" gets an http scheme. Relative paths are kept
// only with AllowRelative. Without AllowQuerystring the query string and
// fragment are dropped.
func (s *Sanitizer) URL(v string, opts types.URLOptions) string {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxURLBytes || strings.ContainsAny(v, " \t\r\n\"<>") {
		return ""
	}
	if !opts.AllowQuerystring {
		if i := strings.IndexAny(v, "?#"); i >= 0 {
			v = v[:i]
		}
	}
	if strings.HasPrefix(v, "/") && !strings.HasPrefix(v, "//") {
		if !opts.AllowRelative {
			return ""
		}
		if _, err := url.Parse(v); err != nil {
			return ""
		}
		return v
	}
	if !strings.Contains(v, "://") {
		if !looksLikeHost(v) {
			return ""
		}
		v = "http://" + v
	}
	if err := s.validate.Var(v, "http_url"); err != nil {
		return ""
	}
	return v
}

// looksLikeHost reports whether v starts with a dotted host name.
func looksLikeHost(v string) bool {
	host, _, _ := strings.Cut(v, "/")
	host, _, _ = strings.Cut(host, ":")
	if !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return false
	}
	for _, r := range host {
		if r != '.' && r != '-' && !('a' <= r && r <= 'z') && !('A' <= r && r <= 'Z') && !('0' <= r && r <= '9') {
			return false
		}
	}
	return true
}

// Entities escapes <, >, &, ' and ".
func (s *Sanitizer) Entities(v string) string {
	return html.EscapeString(v)
}
