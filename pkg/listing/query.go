// Package listing implements the read path of the product catalog: query
// validation, cache key derivation, envelope serialization, query planning,
// and the per-request orchestration that ties them to the store and the
// cache backend.
package listing

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	defaultPage  = 1
	defaultLimit = 50
	maxLimit     = 100

	maxCategoryLen = 50
	maxSearchLen   = 100
)

// sortFields enumerates the columns a listing may be ordered by, in the
// order they are reported in validation messages. Sorting resolves through
// this table only; an unknown field is rejected up front, never silently
// replaced with a default.
var sortFields = []string{"id", "name", "price", "category", "stock_quantity", "created_at", "updated_at"}

// Query is a validated, immutable listing descriptor. Category and Search
// are nil when the request did not filter on them.
type Query struct {
	Page      int     `json:"page"`
	Limit     int     `json:"limit"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
	Category  *string `json:"category"`
	Search    *string `json:"search"`
}

// ParseQuery normalizes raw request parameters into a Query. Absent
// parameters take their defaults. All violations are collected and returned
// together as a single *ValidationError, keyed by parameter name.
func ParseQuery(raw map[string]string) (*Query, error) {
	errs := validation.Errors{}

	q := &Query{
		Page:      defaultPage,
		Limit:     defaultLimit,
		SortBy:    "id",
		SortOrder: "asc",
	}

	if v, ok := raw["page"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs["page"] = errors.New("must be an integer")
		case n < 1:
			errs["page"] = errors.New("must be at least 1")
		default:
			q.Page = n
		}
	}

	if v, ok := raw["limit"]; ok && v != "" {
		n, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs["limit"] = errors.New("must be an integer")
		case n < 1 || n > maxLimit:
			errs["limit"] = fmt.Errorf("must be between 1 and %d", maxLimit)
		default:
			q.Limit = n
		}
	}

	if v, ok := raw["sort_by"]; ok && v != "" {
		q.SortBy = v
	}
	if v, ok := raw["sort_order"]; ok && v != "" {
		q.SortOrder = v
	}
	if v, ok := raw["category"]; ok {
		q.Category = &v
	}
	if v, ok := raw["search"]; ok {
		q.Search = &v
	}

	if err := validation.ValidateStruct(q,
		validation.Field(&q.SortBy, validation.By(oneOf(sortFields))),
		validation.Field(&q.SortOrder, validation.By(oneOf([]string{"asc", "desc"}))),
		validation.Field(&q.Category, validation.By(optionalText(maxCategoryLen))),
		validation.Field(&q.Search, validation.By(optionalText(maxSearchLen))),
	); err != nil {
		var fieldErrs validation.Errors
		if !errors.As(err, &fieldErrs) {
			return nil, err
		}
		for field, ferr := range fieldErrs {
			errs[field] = ferr
		}
	}

	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}
	return q, nil
}

// oneOf rejects any value outside the given set.
func oneOf(allowed []string) validation.RuleFunc {
	return func(value interface{}) error {
		s, _ := value.(string)
		for _, a := range allowed {
			if s == a {
				return nil
			}
		}
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
}

// optionalText accepts a nil value, and otherwise requires a non-blank
// string of at most max characters.
func optionalText(max int) validation.RuleFunc {
	return func(value interface{}) error {
		var s string
		switch v := value.(type) {
		case nil:
			return nil
		case *string:
			if v == nil {
				return nil
			}
			s = *v
		case string:
			s = v
		default:
			return errors.New("must be a string")
		}

		if strings.TrimSpace(s) == "" {
			return errors.New("cannot be blank")
		}
		if utf8.RuneCountInString(s) > max {
			return fmt.Errorf("must be at most %d characters", max)
		}
		return nil
	}
}
