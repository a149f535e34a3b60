package input

// KeyNames is the set of key names accepted by PressKeys, matching the
// injection layer's keycode table. Exposed through the keys tool so agents
// can discover valid combos instead of guessing.
var KeyNames = []string{
	"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l", "m",
	"n", "o", "p", "q", "r", "s", "t", "u", "v", "w", "x", "y", "z",
	"0", "1", "2", "3", "4", "5", "6", "7", "8", "9",
	"f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8", "f9", "f10", "f11", "f12",
	"enter", "tab", "space", "backspace", "delete", "esc",
	"up", "down", "left", "right",
	"home", "end", "pageup", "pagedown",
	"insert", "printscreen", "menu",
	"ctrl", "alt", "shift", "cmd",
	"capslock", "numlock",
	"audio_mute", "audio_vol_down", "audio_vol_up",
	"audio_play", "audio_stop", "audio_prev", "audio_next",
}

var keySet = func() map[string]bool {
	m := make(map[string]bool, len(KeyNames))
	for _, k := range KeyNames {
		m[k] = true
	}
	return m
}()

// IsKnownKey reports whether name is a supported key.
func IsKnownKey(name string) bool {
	return keySet[name]
}
