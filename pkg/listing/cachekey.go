package listing

import (
	"net/url"
	"strconv"
	"strings"
)

// keyNamespace prefixes every listing cache key. The version segment is
// bumped together with the envelope codec so old payloads age out instead
// of being misread.
const keyNamespace = "products:v1"

// keySeparator delimits key segments.
const keySeparator = "|"

// BuildCacheKey derives the canonical cache key for a validated query.
// Segments appear in a fixed order with short field markers; optional
// filters are omitted entirely when absent so that the same semantic query
// always lands on the same key. Free-text filter values are percent-encoded,
// so a separator or marker character inside a category or search term cannot
// forge a segment boundary and collide with a different query.
func BuildCacheKey(q *Query) string {
	parts := []string{
		keyNamespace,
		"p=" + strconv.Itoa(q.Page),
		"l=" + strconv.Itoa(q.Limit),
		"s=" + q.SortBy,
		"o=" + q.SortOrder,
	}
	if q.Category != nil {
		parts = append(parts, "c="+url.QueryEscape(*q.Category))
	}
	if q.Search != nil {
		parts = append(parts, "q="+url.QueryEscape(*q.Search))
	}
	return strings.Join(parts, keySeparator)
}
