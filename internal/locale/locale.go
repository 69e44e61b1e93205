// Package locale formats payload dates and labels for the viewer's locale.
package locale

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed layouts.yaml
var defaultLayouts []byte

// Layouts accepted for incoming payload dates, tried in order.
var inputLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
}

type layoutFile struct {
	Locales []struct {
		Tag  string `yaml:"tag"`
		Date string `yaml:"date"`
	} `yaml:"locales"`
}

// Formatter renders dates and display keys for one locale.
type Formatter struct {
	tag    language.Tag
	layout string
}

func newFormatter(tag language.Tag, layout string) *Formatter {
	return &Formatter{tag: tag, layout: layout}
}

func (f *Formatter) Tag() language.Tag { return f.tag }

// Date reformats a payload date as a locale short date. Input that does not
// parse as a date is returned unchanged.
func (f *Formatter) Date(s string) string {
	s = strings.TrimSpace(s)
	for _, layout := range inputLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(f.layout)
		}
	}
	return s
}

// Upper upper-cases s with the locale's casing rules.
func (f *Formatter) Upper(s string) string {
	// Casers are stateful, so one is built per call.
	return cases.Upper(f.tag).String(s)
}

// Registry holds the supported locales.
type Registry struct {
	formatters []*Formatter
	matcher    language.Matcher
}

// Load parses a YAML layout table. The first locale is the fallback.
func Load(data []byte) (*Registry, error) {
	var file layoutFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse locale layouts: %w", err)
	}
	if len(file.Locales) == 0 {
		return nil, fmt.Errorf("locale layouts: no locales defined")
	}

	r := &Registry{}
	tags := make([]language.Tag, 0, len(file.Locales))
	for _, l := range file.Locales {
		tag, err := language.Parse(l.Tag)
		if err != nil {
			return nil, fmt.Errorf("locale %q: %w", l.Tag, err)
		}
		if strings.TrimSpace(l.Date) == "" {
			return nil, fmt.Errorf("locale %q: empty date layout", l.Tag)
		}
		tags = append(tags, tag)
		r.formatters = append(r.formatters, newFormatter(tag, l.Date))
	}
	r.matcher = language.NewMatcher(tags)
	return r, nil
}

var defaultRegistry = mustLoad(defaultLayouts)

func mustLoad(data []byte) *Registry {
	r, err := Load(data)
	if err != nil {
		panic(err)
	}
	return r
}

// Default returns the registry built from the embedded layout table.
func Default() *Registry { return defaultRegistry }

// Fallback returns the first configured locale.
func (r *Registry) Fallback() *Formatter { return r.formatters[0] }

// Match picks the best supported locale for an Accept-Language header.
func (r *Registry) Match(acceptLanguage string) *Formatter {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return r.Fallback()
	}
	_, idx, conf := r.matcher.Match(tags...)
	if conf == language.No || idx < 0 || idx >= len(r.formatters) {
		return r.Fallback()
	}
	return r.formatters[idx]
}
