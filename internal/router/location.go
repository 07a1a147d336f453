package router

import (
	"net/url"
	"path"
	"strconv"
	"strings"
)

// Kind identifies a view
type Kind int

const (
	Feed Kind = iota
	Artists
	Artist
	Account
	Post
	Media
)

func (k Kind) String() string {
	switch k {
	case Artists:
		return "artists"
	case Artist:
		return "artist"
	case Account:
		return "account"
	case Post:
		return "post"
	case Media:
		return "media"
	default:
		return "feed"
	}
}

// IsDetail reports whether the view shows a single post or media
func (k Kind) IsDetail() bool {
	return k == Post || k == Media
}

// IsList reports whether the view is a paginated, cached post list
func (k Kind) IsList() bool {
	return k == Feed || k == Account
}

// Location is a navigable address: a path plus query
type Location struct {
	Path  string
	Query url.Values
}

// Route is the view a location resolves to
type Route struct {
	Kind  Kind
	Param string // artist name, account id, post id or media id
	Page  int    // 1-based, only meaningful for list views
}

// Parse reads a location such as "/account/42?page=3". Unparseable input
// yields the feed.
func Parse(raw string) Location {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return Location{Path: "/", Query: url.Values{}}
	}
	p := u.EscapedPath()
	if p == "" {
		p = "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if p != "/" {
		p = strings.TrimSuffix(path.Clean(p), "/")
	}
	return Location{Path: p, Query: u.Query()}
}

// String renders the location back to its address form
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Route resolves the location. Unknown paths resolve to the feed.
func (l Location) Route() Route {
	r := Route{Kind: Feed, Page: parsePage(l.Query.Get("page"))}

	segs := strings.Split(strings.Trim(l.Path, "/"), "/")
	switch {
	case l.Path == "/" || l.Path == "/index.html":
		return r
	case len(segs) == 1 && segs[0] == "artists":
		r.Kind = Artists
	case len(segs) == 2 && segs[1] != "":
		param, err := url.PathUnescape(segs[1])
		if err != nil {
			return r
		}
		switch segs[0] {
		case "artist":
			r.Kind = Artist
		case "account":
			r.Kind = Account
		case "post":
			r.Kind = Post
		case "media":
			r.Kind = Media
		default:
			return r
		}
		r.Param = param
	}
	return r
}

// WithPage returns a copy of the location pointing at page n
func (l Location) WithPage(n int) Location {
	q := url.Values{}
	for k, v := range l.Query {
		q[k] = append([]string(nil), v...)
	}
	if n <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(n))
	}
	return Location{Path: l.Path, Query: q}
}

// parsePage treats missing, non-numeric and non-positive values as 1
func parsePage(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
