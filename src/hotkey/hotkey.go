package hotkey

import (
	"errors"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// Binding ties a combination such as "Ctrl+Alt+T" to a callback.
type Binding struct {
	Combo    string
	Callback func()
}

type keyState struct {
	name     string
	rawcodes []uint16
	pressed  bool
}

// combo tracks which keys of one binding are held down.
type combo struct {
	binding Binding
	keys    []keyState
}

func newCombo(b Binding) (*combo, bool) {
	c := &combo{binding: b}
	for _, name := range parseHotkey(b.Combo) {
		raw := keyNameToRawcodes(name)
		if len(raw) == 0 {
			log.Printf("hotkey: cannot map key %q of %q", name, b.Combo)
			return nil, false
		}
		c.keys = append(c.keys, keyState{name: name, rawcodes: raw})
	}
	return c, len(c.keys) > 0
}

// press marks rawcode as held and reports whether the whole combination is
// now down. A completed combination resets so holding keys fires once.
func (c *combo) press(rawcode uint16) bool {
	for i := range c.keys {
		if matches(c.keys[i].rawcodes, rawcode) {
			c.keys[i].pressed = true
		}
	}
	for i := range c.keys {
		if !c.keys[i].pressed {
			return false
		}
	}
	for i := range c.keys {
		c.keys[i].pressed = false
	}
	return true
}

func (c *combo) release(rawcode uint16) {
	for i := range c.keys {
		if matches(c.keys[i].rawcodes, rawcode) {
			c.keys[i].pressed = false
		}
	}
}

func matches(codes []uint16, rawcode uint16) bool {
	for _, c := range codes {
		if c == rawcode {
			return true
		}
	}
	return false
}

// Listen registers every binding on one global keyboard hook. Bindings with
// an empty or unmappable combination are skipped. Callbacks run on the hook
// goroutine and must not block.
func Listen(bindings ...Binding) error {
	var combos []*combo
	for _, b := range bindings {
		if strings.TrimSpace(b.Combo) == "" {
			continue
		}
		if c, ok := newCombo(b); ok {
			combos = append(combos, c)
			log.Printf("hotkey: listening for %s", b.Combo)
		}
	}
	if len(combos) == 0 {
		return errors.New("no valid hotkey bindings")
	}

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("hotkey: PANIC in hook goroutine: %v", r)
			}
		}()
		evChan := gohook.Start()
		if evChan == nil {
			log.Printf("hotkey: gohook.Start() returned nil channel")
			return
		}
		var mu sync.Mutex
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				var fire []func()
				mu.Lock()
				for _, c := range combos {
					if c.press(ev.Rawcode) {
						log.Printf("hotkey: %s", c.binding.Combo)
						fire = append(fire, c.binding.Callback)
					}
				}
				mu.Unlock()
				for _, fn := range fire {
					if fn != nil {
						fn()
					}
				}
			case gohook.KeyUp:
				mu.Lock()
				for _, c := range combos {
					c.release(ev.Rawcode)
				}
				mu.Unlock()
			}
		}
		log.Printf("hotkey: event channel closed")
	}()
	return nil
}

// Stop ends the global hook.
func Stop() { gohook.End() }

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		case "control":
			keys = append(keys, "ctrl")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var specialKeys = map[string][]uint16{
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":     {32},
	"enter":     {13},
	"return":    {13},
	"esc":       {27},
	"escape":    {27},
	"tab":       {9},
	"backspace": {8},
	"delete":    {46},
	"del":       {46},
	"insert":    {45},
	"ins":       {45},
	"home":      {36},
	"end":       {35},
	"pageup":    {33},
	"pgup":      {33},
	"pagedown":  {34},
	"pgdn":      {34},
	"left":      {37},
	"up":        {38},
	"right":     {39},
	"down":      {40},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes. Modifiers
// return both the left and right variants.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if keyName == "win" || keyName == "super" {
		keyName = "cmd"
	}
	if codes, ok := specialKeys[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		switch c := keyName[0]; {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65}
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	// F1-F24 are VK 112-135
	if strings.HasPrefix(keyName, "f") {
		var n int
		for _, r := range keyName[1:] {
			if r < '0' || r > '9' {
				n = 0
				break
			}
			n = n*10 + int(r-'0')
		}
		if n >= 1 && n <= 24 {
			return []uint16{uint16(111 + n)}
		}
	}
	log.Printf("hotkey: unknown key name %q", keyName)
	return nil
}
