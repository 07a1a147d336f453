package navcache

import (
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Key identifies one navigation state: a location path plus every query
// parameter that influences the response, including active filters.
type Key struct {
	Path  string
	Query string
}

// NewKey derives the cache key for a location. locQuery holds the location's
// own parameters (page); filter holds the active filter parameters. Keys and
// repeated values are sorted, so the same logical view always yields the
// same key whatever the parameter order. A page that resolves to the first
// page is dropped, so "/" and "/?page=1" share an entry.
func NewKey(locPath string, locQuery, filter url.Values) Key {
	merged := url.Values{}
	for _, src := range []url.Values{locQuery, filter} {
		for k, vs := range src {
			merged[k] = append(merged[k], vs...)
		}
	}
	if n := pageNumber(merged.Get("page")); n > 1 {
		merged.Set("page", strconv.Itoa(n))
	} else {
		merged.Del("page")
	}

	var b strings.Builder
	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		vs := slices.Clone(merged[k])
		slices.Sort(vs)
		vs = slices.Compact(vs)
		for _, v := range vs {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(norm.NFC.String(v)))
		}
	}

	return Key{Path: cleanPath(locPath), Query: b.String()}
}

// pageNumber parses a page parameter; missing, non-numeric and non-positive
// values mean page 1.
func pageNumber(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return norm.NFC.String(path.Clean(p))
}

// String renders the key as a URL-like string for logs
func (k Key) String() string {
	if k.Query == "" {
		return k.Path
	}
	return k.Path + "?" + k.Query
}
