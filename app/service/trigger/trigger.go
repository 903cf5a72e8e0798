package trigger

import (
	"regexp"
	"strings"
)

// Trigger is the parsed form of a "met <name> at <event>, <context>" message.
type Trigger struct {
	Name    string
	Event   string
	Context string
	IsValid bool
}

var triggerRe = regexp.MustCompile(`(?i)^met\s+(.+?)\s+at\s+([^,]+)(?:,\s*(.+))?$`)

// Parse recognizes the trigger grammar. Callers branch only on IsValid;
// the captured fields are taken as-is apart from whitespace trimming.
func Parse(text string) Trigger {
	match := triggerRe.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return Trigger{}
	}

	return Trigger{
		Name:    strings.TrimSpace(match[1]),
		Event:   strings.TrimSpace(match[2]),
		Context: strings.TrimSpace(match[3]),
		IsValid: true,
	}
}
