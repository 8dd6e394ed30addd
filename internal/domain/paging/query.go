package paging

import (
	"net/url"
	"strconv"
	"strings"

	"pet-guardianship/internal/platform/apperr"
)

// FromQuery lee first, after, page y pageSize de la query string.
func FromQuery(q url.Values) (Request, error) {
	var req Request

	first, err := intParam(q, "first")
	if err != nil {
		return Request{}, err
	}
	req.First = first

	size, err := intParam(q, "pageSize")
	if err != nil {
		return Request{}, err
	}
	req.PageSize = size

	req.After = strings.TrimSpace(q.Get("after"))

	if v := strings.TrimSpace(q.Get("page")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Request{}, apperr.BadRequest("page must be an integer")
		}
		req.Page = &n
	}
	return req, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := strings.TrimSpace(q.Get(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, apperr.BadRequest("%s must be an integer", name)
	}
	return n, nil
}
