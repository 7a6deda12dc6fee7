package catalog

import (
	"net/url"
	"strings"

	"techhub/internal/domain"
)

// ParseQueryString reads q and category from a URL query. Unknown
// categories are ignored.
func ParseQueryString(raw string) (string, domain.Category) {
	v, err := url.ParseQuery(strings.TrimPrefix(raw, "?"))
	if err != nil {
		return "", ""
	}
	cat := domain.Category(v.Get("category"))
	if !cat.Valid() {
		cat = ""
	}
	return strings.TrimSpace(v.Get("q")), cat
}

// QueryString mirrors search state into a URL query, omitting empty values.
func QueryString(search string, category domain.Category) string {
	v := url.Values{}
	if search != "" {
		v.Set("q", search)
	}
	if category != "" {
		v.Set("category", string(category))
	}
	return v.Encode()
}
