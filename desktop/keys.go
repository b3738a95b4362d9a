package desktop

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownKey is returned for names outside the key vocabulary.
var ErrUnknownKey = errors.New("unknown key")

// Key is a normalized key name understood by the injector.
type Key string

var keyAliases = map[string]string{
	"return":   "enter",
	"escape":   "esc",
	"control":  "ctrl",
	"del":      "delete",
	"pgup":     "pageup",
	"pgdn":     "pagedown",
	"cmd":      "win",
	"super":    "win",
	"command":  "win",
	"option":   "alt",
	"prtsc":    "printscreen",
	"print":    "printscreen",
	"ins":      "insert",
	"lcontrol": "lctrl",
	"rcontrol": "rctrl",
}

// injector names that differ from the public vocabulary
var injectorNames = map[string]string{
	"win":     "cmd",
	"lwin":    "lcmd",
	"rwin":    "rcmd",
	"numlock": "num_lock",
}

var keyVocabulary = func() map[string]bool {
	vocab := map[string]bool{}
	for c := 'a'; c <= 'z'; c++ {
		vocab[string(c)] = true
	}
	for c := '0'; c <= '9'; c++ {
		vocab[string(c)] = true
	}
	for i := 1; i <= 24; i++ {
		vocab[fmt.Sprintf("f%d", i)] = true
	}
	for _, k := range []string{
		"enter", "tab", "space", "backspace", "delete", "esc",
		"up", "down", "left", "right",
		"home", "end", "pageup", "pagedown", "insert",
		"capslock", "numlock", "printscreen", "menu",
		"ctrl", "lctrl", "rctrl",
		"shift", "lshift", "rshift",
		"alt", "lalt", "ralt",
		"win", "lwin", "rwin",
	} {
		vocab[k] = true
	}
	for _, p := range strings.Split("` - = [ ] \\ ; ' , . /", " ") {
		vocab[p] = true
	}
	return vocab
}()

// ParseKey validates name against the vocabulary. Names are
// case-insensitive; common aliases are accepted.
func ParseKey(name string) (Key, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return "", fmt.Errorf("%w: empty key name", ErrUnknownKey)
	}
	if alias, ok := keyAliases[n]; ok {
		n = alias
	}
	if !keyVocabulary[n] {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownKey, name)
	}
	if mapped, ok := injectorNames[n]; ok {
		return Key(mapped), nil
	}
	return Key(n), nil
}

// KeyNames lists the accepted key names, aliases excluded.
func KeyNames() []string {
	names := make([]string, 0, len(keyVocabulary))
	for k := range keyVocabulary {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
