package core

import (
	"sort"
	"strconv"
	"strings"
)

// Android key codes with operator-friendly names.
var keyCodes = map[string]int{
	"enter":     66,
	"backspace": 67,
	"tab":       61,
	"escape":    111,
	"back":      4,
	"home":      3,
	"up":        19,
	"down":      20,
	"left":      21,
	"right":     22,
}

// KeyCode resolves a key name (case-insensitive) or a decimal code.
func KeyCode(name string) (int, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	if code, ok := keyCodes[name]; ok {
		return code, true
	}
	code, err := strconv.Atoi(name)
	if err != nil || code < 0 {
		return 0, false
	}
	return code, true
}

// KeyNames returns the known key names, sorted.
func KeyNames() []string {
	names := make([]string, 0, len(keyCodes))
	for name := range keyCodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
