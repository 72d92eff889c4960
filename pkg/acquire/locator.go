package acquire

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"stratus-hq/skywatch/pkg/timealign"
)

// Locator builds fully-qualified resource URLs from a template parameterized
// by the components of an acquisition index. Supported placeholders:
//
//	{year}   four-digit year
//	{month}  two-digit month
//	{day}    two-digit day
//	{hour}   two-digit hour (UTC)
//	{minute} two-digit minute
//	{index}  the full YYYYMMDDHHMM key
//
// The template is parsed and validated once at startup; a malformed template
// is a fatal configuration error, never a mid-run surprise.
type Locator struct {
	template string
}

var locatorPlaceholders = map[string]func(t time.Time) string{
	"year":   func(t time.Time) string { return fmt.Sprintf("%04d", t.Year()) },
	"month":  func(t time.Time) string { return fmt.Sprintf("%02d", int(t.Month())) },
	"day":    func(t time.Time) string { return fmt.Sprintf("%02d", t.Day()) },
	"hour":   func(t time.Time) string { return fmt.Sprintf("%02d", t.Hour()) },
	"minute": func(t time.Time) string { return fmt.Sprintf("%02d", t.Minute()) },
	"index":  func(t time.Time) string { return t.Format("200601021504") },
}

// ParseLocator validates a locator template and returns a Locator.
// It rejects empty templates, unknown or unterminated placeholders, and
// templates that do not expand to an absolute http(s) URL.
func ParseLocator(template string) (*Locator, error) {
	if strings.TrimSpace(template) == "" {
		return nil, fmt.Errorf("locator template is empty")
	}

	rest := template
	for {
		open := strings.Index(rest, "{")
		if open < 0 {
			break
		}
		close := strings.Index(rest[open:], "}")
		if close < 0 {
			return nil, fmt.Errorf("locator template %q: unterminated placeholder", template)
		}
		name := rest[open+1 : open+close]
		if _, ok := locatorPlaceholders[name]; !ok {
			return nil, fmt.Errorf("locator template %q: unknown placeholder {%s}", template, name)
		}
		rest = rest[open+close+1:]
	}

	l := &Locator{template: template}

	// Expand against a fixed instant to validate the URL shape once.
	sample := l.URL(timealign.Align(time.Date(2024, 1, 2, 3, 4, 0, 0, time.UTC), time.Minute))
	u, err := url.Parse(sample)
	if err != nil {
		return nil, fmt.Errorf("locator template %q: %w", template, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("locator template %q: scheme must be http or https, got %q", template, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("locator template %q: missing host", template)
	}

	return l, nil
}

// URL interpolates the index into the template and returns the resource URL.
func (l *Locator) URL(idx timealign.Index) string {
	t := idx.Time()
	expanded := l.template
	for name, format := range locatorPlaceholders {
		expanded = strings.ReplaceAll(expanded, "{"+name+"}", format(t))
	}
	return expanded
}

// String returns the raw template.
func (l *Locator) String() string {
	return l.template
}
