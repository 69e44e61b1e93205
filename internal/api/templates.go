package api

import (
	"html/template"
	"io/fs"
	"net/url"
	"time"

	"github.com/dustin/go-humanize"
)

func LoadTemplates(fsys fs.FS) (*template.Template, error) {
	funcs := template.FuncMap{
		// slice creates a slice from variadic string arguments
		"slice": func(args ...string) []string {
			return args
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"min": func(a, b int) int {
			if a < b {
				return a
			}
			return b
		},
		"max": func(a, b int) int {
			if a > b {
				return a
			}
			return b
		},
		// seq returns a sequence of integers from start to end inclusive.
		"seq": func(start, end int) []int {
			if end < start {
				return []int{}
			}
			nums := make([]int, 0, end-start+1)
			for i := start; i <= end; i++ {
				nums = append(nums, i)
			}
			return nums
		},
		// getFilter extracts a single value from url.Values (returns first value or empty string)
		"getFilter": func(values url.Values, key string) string {
			if values == nil {
				return ""
			}
			return values.Get(key)
		},
		"urlquery": func(s string) string {
			return url.QueryEscape(s)
		},
		"bytes": func(n int64) string {
			if n < 0 {
				n = 0
			}
			return humanize.Bytes(uint64(n))
		},
		"ago": func(t time.Time) string {
			return humanize.Time(t)
		},
	}

	t := template.New("base").Funcs(funcs)

	patterns := []string{
		"templates/layouts/*.html",
		"templates/pages/*.html",
		"templates/partials/*.html",
	}
	for _, p := range patterns {
		if matches, _ := fs.Glob(fsys, p); len(matches) == 0 {
			continue
		}
		if _, err := t.ParseFS(fsys, p); err != nil {
			return nil, err
		}
	}

	return t, nil
}
