package model

import (
	"strconv"
	"strings"
)

// ParseCartItems parses the user-editable cart field, a comma-separated
// list of product ids such as "12, 7,3". Malformed, non-positive and
// duplicate entries are dropped; an empty or unparsable field yields an
// empty cart, never an error.
func ParseCartItems(raw string) []int64 {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	seen := make(map[int64]struct{})
	var ids []int64

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}

		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	return ids
}
