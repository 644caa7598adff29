package repository

import (
	"fmt"
	"math"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Order sorts by a single property.
type Order struct {
	Property  string
	Direction Direction
}

// Pageable requests one zero-based page of results.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

// Offset is the number of rows skipped before this page.
func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// Validate checks page and size bounds. Sort properties are checked by the repository.
func (p Pageable) Validate() error {
	if p.Page < 0 {
		return fmt.Errorf("page must not be negative: %w", ErrInvalidPageable)
	}
	if p.Size < 1 {
		return fmt.Errorf("size must be at least 1: %w", ErrInvalidPageable)
	}
	if p.Page > math.MaxInt/p.Size {
		return fmt.Errorf("page %d is out of range: %w", p.Page, ErrInvalidPageable)
	}
	for _, o := range p.Sort {
		switch o.Direction {
		case Asc, Desc:
		default:
			return fmt.Errorf("sort direction %q: %w", o.Direction, ErrInvalidPageable)
		}
	}
	return nil
}

// ParseOrder parses "property[,asc|desc]", the form used by the sort query parameter.
func ParseOrder(s string) (Order, error) {
	parts := strings.Split(s, ",")
	o := Order{Property: strings.TrimSpace(parts[0]), Direction: Asc}
	if o.Property == "" {
		return Order{}, fmt.Errorf("empty sort property: %w", ErrInvalidPageable)
	}
	switch len(parts) {
	case 1:
	case 2:
		o.Direction = Direction(strings.ToLower(strings.TrimSpace(parts[1])))
		if o.Direction != Asc && o.Direction != Desc {
			return Order{}, fmt.Errorf("sort direction %q: %w", parts[1], ErrInvalidPageable)
		}
	default:
		return Order{}, fmt.Errorf("sort %q: %w", s, ErrInvalidPageable)
	}
	return o, nil
}

// Page is one slice of a larger result set.
type Page[T any] struct {
	Content       []T
	Number        int
	Size          int
	TotalElements int64
	TotalPages    int
}

// NewPage assembles a page and derives the total page count.
func NewPage[T any](content []T, pageable Pageable, total int64) Page[T] {
	pages := 0
	if pageable.Size > 0 {
		pages = int((total + int64(pageable.Size) - 1) / int64(pageable.Size))
	}
	return Page[T]{
		Content:       content,
		Number:        pageable.Page,
		Size:          pageable.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// HasNext reports whether a page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Number+1 < p.TotalPages
}

// HasPrevious reports whether a page precedes this one.
func (p Page[T]) HasPrevious() bool {
	return p.Number > 0
}
