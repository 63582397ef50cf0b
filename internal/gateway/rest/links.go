package rest

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tmforum-oda/reference-example-components/internal/storage"
)

func formatInt(n int64) string {
	return strconv.FormatInt(n, 10)
}

// setPaginationLinks emits an RFC 5988 Link header with self/next/prev/
// last relations reflecting the offset-based paging window.
func setPaginationLinks(w http.ResponseWriter, r *http.Request, query storage.ListQuery, total int64) {
	skip := query.Options.Skip
	limit := query.Options.Limit

	links := []string{
		paginationLink(r, query, skip, limit, "self"),
	}

	if limit > 0 {
		if skip+limit < total {
			if skip+2*limit < total {
				links = append(links, paginationLink(r, query, skip+limit, limit, "next"))
			} else {
				links = append(links, paginationLink(r, query, skip+limit, total-skip-limit, "next"))
			}
			links = append(links, paginationLink(r, query, total-limit, limit, "last"))
		}
		if skip-limit > 0 {
			links = append(links, paginationLink(r, query, skip-limit, limit, "prev"))
		} else if skip > 0 {
			links = append(links, paginationLink(r, query, 0, skip, "prev"))
		}
	}

	w.Header().Set("Link", strings.Join(links, ", "))
}

func paginationLink(r *http.Request, query storage.ListQuery, offset, limit int64, rel string) string {
	values := url.Values{}
	if len(query.Options.Projection) > 0 {
		values.Set("fields", strings.Join(query.Options.Projection, ","))
	}
	values.Set("offset", formatInt(offset))
	if limit > 0 {
		values.Set("limit", formatInt(limit))
	}

	target := url.URL{
		Scheme:   urlScheme(r),
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: values.Encode(),
	}
	return fmt.Sprintf("<%s>; rel=%q", target.String(), rel)
}

func urlScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
