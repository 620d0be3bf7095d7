package device

import (
	"fmt"
	"strconv"
	"strings"
)

// Blacklist is a set of entity ids excluded from the device cache at sync
// time. It is built once from configuration and read-only afterwards, so no
// locking is needed.
type Blacklist map[int]struct{}

// ParseBlacklist parses the comma-separated blacklist option.
//
// Whitespace around entries is ignored and empty entries are skipped, so
// "101, 102," parses cleanly. Non-numeric entries fail the whole parse —
// a typo silently un-blacklisting a device is worse than a startup error.
//
// Parameters:
//   - raw: The entity_blacklist option string
//
// Returns:
//   - Blacklist: Parsed id set (empty, non-nil, for an empty string)
//   - error: ErrInvalidBlacklist naming the offending entry
func ParseBlacklist(raw string) (Blacklist, error) {
	bl := make(Blacklist)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %q is not an integer", ErrInvalidBlacklist, part)
		}
		bl[id] = struct{}{}
	}
	return bl, nil
}

// Contains reports whether an id is blacklisted.
func (b Blacklist) Contains(id int) bool {
	_, ok := b[id]
	return ok
}

// Len returns the number of blacklisted ids.
func (b Blacklist) Len() int {
	return len(b)
}
