package views

import (
	"strconv"
	"strings"
	"sync/atomic"
)

var viewSeq atomic.Uint64

// NextViewID returns a process-unique ID for a view instance.
func NextViewID() string {
	return strconv.FormatUint(viewSeq.Add(1), 10)
}

// ComponentID assembles a component custom ID of the form
// kind:guildID:part[:part...], the routing key for interactions.
func ComponentID(kind, guildID string, parts ...string) string {
	return strings.Join(append([]string{kind, guildID}, parts...), ":")
}

// ParseComponentID splits a custom ID back into kind, guild ID and the
// remaining parts. ok is false when the ID is not in the expected shape.
func ParseComponentID(customID string) (kind, guildID string, parts []string, ok bool) {
	fields := strings.Split(customID, ":")
	if len(fields) < 2 {
		return "", "", nil, false
	}
	return fields[0], fields[1], fields[2:], true
}
