package handler

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/gofiber/fiber/v2"

	"aidkit/internal/repository"
	"aidkit/internal/repository/schema"
)

// decodeFields reads a JSON object body into repository fields. Numbers keep
// their literal form and date or timestamp columns given as strings are
// parsed; anything else passes through for the repository to validate, so an
// unknown key or a wrongly typed value surfaces as its repository error kind.
func decodeFields(c *fiber.Ctx, t *schema.Table) (repository.Fields, error) {
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, badRequest("INVALID_BODY", "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, badRequest("INVALID_BODY", "body must be a JSON object")
	}
	if raw == nil {
		return nil, badRequest("INVALID_BODY", "body must be a JSON object")
	}

	fields := make(repository.Fields, len(raw))
	for k, v := range raw {
		fields[k] = v
		col, ok := t.Column(k)
		if !ok || (col.Kind != schema.Date && col.Kind != schema.Timestamp) {
			continue
		}
		s, ok := v.(string)
		if !ok {
			continue
		}
		if ts, err := parseTime(strings.TrimSpace(s)); err == nil {
			fields[k] = ts
		}
	}
	return fields, nil
}

// consumeRequest is the body of POST .../stock/:stockId/consume.
type consumeRequest struct {
	Amount int64 `json:"amount"`
}
