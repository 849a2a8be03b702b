package orders

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/shipdesk-backend/pkg/errors"
)

// MaxDeleteBatch caps how many orders one bulk delete may name.
const MaxDeleteBatch = 500

// ParseOrderIDs accepts JSON numbers or numeric strings. Any id that is not a
// positive integer rejects the whole batch. Duplicates are collapsed in order.
func ParseOrderIDs(raw []json.RawMessage) ([]int64, error) {
	if len(raw) == 0 {
		return nil, invalidIDs("orderIds must not be empty", nil)
	}
	ids := make([]int64, 0, len(raw))
	for i, value := range raw {
		id, ok := parseOrderID(value)
		if !ok {
			return nil, invalidIDs("orderIds must contain positive integers", map[string]any{
				"index": i,
				"value": string(value),
			})
		}
		ids = append(ids, id)
	}
	return normalizeIDs(ids)
}

// normalizeIDs drops duplicates, keeping first-seen order, and enforces the
// batch bounds.
func normalizeIDs(ids []int64) ([]int64, error) {
	if len(ids) == 0 {
		return nil, invalidIDs("orderIds must not be empty", nil)
	}
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for i, id := range ids {
		if id <= 0 {
			return nil, invalidIDs("orderIds must contain positive integers", map[string]any{
				"index": i,
				"value": strconv.FormatInt(id, 10),
			})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) > MaxDeleteBatch {
		return nil, invalidIDs("too many orderIds", map[string]any{"max": MaxDeleteBatch})
	}
	return out, nil
}

func parseOrderID(value json.RawMessage) (int64, bool) {
	value = bytes.TrimSpace(value)
	if len(value) == 0 {
		return 0, false
	}
	text := string(value)
	if value[0] == '"' {
		if err := json.Unmarshal(value, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	}
	id, err := strconv.ParseInt(text, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidIDs(msg string, extra map[string]any) error {
	details := map[string]any{"reason": pkgerrors.ReasonInvalidField, "field": "orderIds"}
	for k, v := range extra {
		details[k] = v
	}
	return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
}
