package charset

// Shorthand classes. All of them are ASCII-only.
var (
	Digit = Ranges{{'0', '9'}}
	Word  = Ranges{{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}}
	Space = Ranges{{'\t', '\r'}, {' ', ' '}}
)

// IsWord reports whether r belongs to the \w class.
func IsWord(r rune) bool {
	return r < 0x80 && wordTable[r]
}

var wordTable = func() (t [0x80]bool) {
	for _, rg := range Word {
		for c := rg.Lo; c <= rg.Hi; c++ {
			t[c] = true
		}
	}
	return t
}()
