package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jbweber/homelab/tripdesk/internal/repository"
)

const pagingTemplate = "{?page,size,sort}"

// parsePageable reads page, size and sort from the query string. Sizes above
// the configured maximum are clamped rather than rejected.
func (a *API) parsePageable(r *http.Request) (repository.Pageable, error) {
	q := r.URL.Query()
	p := repository.Pageable{Page: 0, Size: a.opts.DefaultPageSize}

	if v := q.Get("page"); v != "" {
		page, err := strconv.Atoi(v)
		if err != nil || page < 0 {
			return p, fmt.Errorf("page %q: %w", v, repository.ErrInvalidPageable)
		}
		p.Page = page
	}
	if v := q.Get("size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil || size < 1 {
			return p, fmt.Errorf("size %q: %w", v, repository.ErrInvalidPageable)
		}
		p.Size = min(size, a.opts.MaxPageSize)
	}
	for _, s := range q["sort"] {
		o, err := repository.ParseOrder(s)
		if err != nil {
			return p, err
		}
		p.Sort = append(p.Sort, o)
	}
	return p, nil
}

func hasPagingParams(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("page") || q.Has("size") || q.Has("sort")
}

func pageHref(collection string, page, size int, sort []repository.Order) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	for _, o := range sort {
		q.Add("sort", o.Property+","+string(o.Direction))
	}
	return collection + "?" + q.Encode()
}

// pageLinks adds self and the navigation links for a page of a collection.
func pageLinks[T any](links Links, collection string, explicit bool, page repository.Page[T], sort []repository.Order) {
	if explicit {
		links["self"] = Link{Href: pageHref(collection, page.Number, page.Size, sort)}
	} else {
		links["self"] = Link{Href: collection + pagingTemplate, Templated: true}
	}
	if page.TotalPages <= 1 && page.Number == 0 {
		return
	}

	links["first"] = Link{Href: pageHref(collection, 0, page.Size, sort)}
	if page.HasPrevious() {
		links["prev"] = Link{Href: pageHref(collection, page.Number-1, page.Size, sort)}
	}
	if page.HasNext() {
		links["next"] = Link{Href: pageHref(collection, page.Number+1, page.Size, sort)}
	}
	if page.TotalPages > 0 {
		links["last"] = Link{Href: pageHref(collection, page.TotalPages-1, page.Size, sort)}
	}
}
