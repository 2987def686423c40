package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"aidkit/internal/repository"
	"aidkit/internal/repository/filter"
	"aidkit/internal/service"
)

// requestError is a malformed request detected before any service call.
type requestError struct {
	code    string
	message string
}

func (e *requestError) Error() string { return e.message }

func badRequest(code, format string, args ...any) error {
	return &requestError{code: code, message: fmt.Sprintf(format, args...)}
}

// queryFilter maps a repeatable query parameter (ids=1&ids=2) onto a column.
type queryFilter struct {
	param  string
	column string
	ints   bool
}

var (
	idsFilter   = queryFilter{param: "ids", column: "id", ints: true}
	namesFilter = queryFilter{param: "names", column: "name"}

	producerFilters = []queryFilter{idsFilter, namesFilter}
	categoryFilters = []queryFilter{idsFilter, namesFilter}

	medicationFilters = []queryFilter{
		idsFilter,
		{param: "brandNames", column: "brand_name"},
		{param: "genericNames", column: "generic_name"},
		{param: "dosageForms", column: "dosage_form"},
		{param: "producerIds", column: "producer_id", ints: true},
		{param: "categoryIds", column: "category_id", ints: true},
	}

	aidKitFilters = []queryFilter{
		idsFilter,
		namesFilter,
		{param: "locations", column: "location"},
	}

	stockFilters = []queryFilter{
		idsFilter,
		{param: "aidkitIds", column: "aidkit_id", ints: true},
		{param: "measureUnits", column: "measure_unit"},
	}
)

// rangeParams maps the camelCase time range parameters onto filter range keys.
var rangeParams = []struct {
	param string
	key   string
}{
	{"createdBefore", filter.CreatedBefore},
	{"createdAfter", filter.CreatedAfter},
	{"updatedBefore", filter.UpdatedBefore},
	{"updatedAfter", filter.UpdatedAfter},
}

// timeLayouts are tried in order; values without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not a date or RFC 3339 timestamp", s)
}

// parseFilters reads the list filters of one collection from the query string.
func parseFilters(c *fiber.Ctx, filters []queryFilter) (filter.Map, error) {
	m := filter.Map{}
	args := c.Context().QueryArgs()

	for _, r := range rangeParams {
		raw := c.Query(r.param)
		if raw == "" {
			continue
		}
		t, err := parseTime(raw)
		if err != nil {
			return nil, badRequest("INVALID_QUERY", "%s: %v", r.param, err)
		}
		m[r.key] = filter.Time(&t)
	}

	for _, f := range filters {
		raw := args.PeekMulti(f.param)
		if len(raw) == 0 {
			continue
		}
		vals := make([]any, 0, len(raw))
		for _, b := range raw {
			if !f.ints {
				vals = append(vals, string(b))
				continue
			}
			n, err := strconv.ParseInt(string(b), 10, 64)
			if err != nil {
				return nil, badRequest("INVALID_QUERY", "%s: %q is not an integer", f.param, b)
			}
			vals = append(vals, n)
		}
		m[f.column] = filter.Set(vals)
	}

	return m, nil
}

// intQuery reads an optional integer query parameter; code names the failure.
func intQuery(c *fiber.Ctx, name, code string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(code, "invalid %s", name)
	}
	return n, nil
}

// pageParams reads limit and offset. Bounds are checked by the service.
func pageParams(c *fiber.Ctx, page service.Pagination) (limit, offset int, err error) {
	if limit, err = intQuery(c, "limit", "INVALID_LIMIT", page.ItemsPerPage); err != nil {
		return 0, 0, err
	}
	if offset, err = intQuery(c, "offset", "INVALID_OFFSET", 0); err != nil {
		return 0, 0, err
	}
	return limit, offset, nil
}

// stockWindow reads stockLimit and stockOffset for aid kit reads.
func stockWindow(c *fiber.Ctx, page service.Pagination) (repository.Window, error) {
	limit, err := intQuery(c, "stockLimit", "INVALID_STOCK_LIMIT", page.ItemsPerPage)
	if err != nil {
		return repository.Window{}, err
	}
	offset, err := intQuery(c, "stockOffset", "INVALID_STOCK_OFFSET", 0)
	if err != nil {
		return repository.Window{}, err
	}
	return repository.Window{Limit: limit, Offset: int64(offset)}, nil
}

// idParam reads a positive integer path parameter.
func idParam(c *fiber.Ctx, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("INVALID_ID", "invalid %s format", name)
	}
	return id, nil
}
