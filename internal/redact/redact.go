// Package redact scrubs known secret values out of text before it reaches logs,
// error messages or persisted history.
package redact

import (
	"net/url"
	"sort"
	"strings"
)

// Mask replaces every redacted occurrence.
const Mask = "***"

// Redactor replaces known secret values. The zero value and a nil *Redactor
// are valid and return their input unchanged.
type Redactor struct {
	replacer *strings.Replacer
	secrets  []string
}

// New builds a Redactor for the given secrets. Empty values are ignored. For
// every secret its URL-escaped forms are registered as well since a token
// embedded in a clone URL may be echoed back escaped.
func New(secrets ...string) *Redactor {
	seen := make(map[string]struct{})
	var all []string
	add := func(s string) {
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		all = append(all, s)
	}
	for _, s := range secrets {
		s = strings.TrimSpace(s)
		add(s)
		add(url.PathEscape(s))
		add(url.QueryEscape(s))
		// Multi-line secrets (private keys) are also matched line by line.
		if strings.Contains(s, "\n") {
			for _, line := range strings.Split(s, "\n") {
				if line = strings.TrimSpace(line); len(line) >= 16 {
					add(line)
				}
			}
		}
	}
	// Longest first so a secret that contains another is masked whole.
	sort.SliceStable(all, func(i, j int) bool { return len(all[i]) > len(all[j]) })

	r := &Redactor{secrets: all}
	if len(all) > 0 {
		pairs := make([]string, 0, len(all)*2)
		for _, s := range all {
			pairs = append(pairs, s, Mask)
		}
		r.replacer = strings.NewReplacer(pairs...)
	}
	return r
}

// String returns s with every known secret masked.
func (r *Redactor) String(s string) string {
	if r == nil || r.replacer == nil {
		return s
	}
	return r.replacer.Replace(s)
}

// Strings masks every element, returning a new slice.
func (r *Redactor) Strings(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = r.String(s)
	}
	return out
}

// Contains reports whether s still carries any known secret.
func (r *Redactor) Contains(s string) bool {
	if r == nil {
		return false
	}
	for _, secret := range r.secrets {
		if strings.Contains(s, secret) {
			return true
		}
	}
	return false
}

// Merge returns a Redactor covering the secrets of both.
func (r *Redactor) Merge(other *Redactor) *Redactor {
	var secrets []string
	if r != nil {
		secrets = append(secrets, r.secrets...)
	}
	if other != nil {
		secrets = append(secrets, other.secrets...)
	}
	return New(secrets...)
}
