package pcregex

// ReplaceFirst returns a copy of src with the leftmost match replaced by
// repl. The replacement is substituted directly, without expanding $
// variables. Without a match it returns a copy of src.
//
// Example:
//
//	re := pcregex.MustCompile(`\d+`)
//	result := re.ReplaceFirst([]byte("1 and 2"), []byte("N"))
//	// result = []byte("N and 2")
func (r *Regex) ReplaceFirst(src, repl []byte) []byte {
	match := r.engine.Find(src)
	if match == nil {
		return append([]byte(nil), src...)
	}
	out := make([]byte, 0, len(src)-match.Len()+len(repl))
	out = append(out, src[:match.Start()]...)
	out = append(out, repl...)
	return append(out, src[match.End():]...)
}

// ReplaceFirstString is ReplaceFirst for strings.
func (r *Regex) ReplaceFirstString(src, repl string) string {
	return string(r.ReplaceFirst([]byte(src), []byte(repl)))
}

// ReplaceAllLiteral returns a copy of src, replacing matches of the pattern
// with the replacement bytes repl.
// The replacement is substituted directly, without expanding $ variables.
//
// Example:
//
//	re := pcregex.MustCompile(`\d+`)
//	result := re.ReplaceAllLiteral([]byte("age: 42"), []byte("XX"))
//	// result = []byte("age: XX")
func (r *Regex) ReplaceAllLiteral(src, repl []byte) []byte {
	spans := r.engine.FindAllSpans(src, -1)
	out := make([]byte, 0, len(src))
	last := 0
	for _, s := range spans {
		out = append(out, src[last:s.Start]...)
		out = append(out, repl...)
		last = s.End
	}
	return append(out, src[last:]...)
}

// ReplaceAllLiteralString is ReplaceAllLiteral for strings.
func (r *Regex) ReplaceAllLiteralString(src, repl string) string {
	return string(r.ReplaceAllLiteral([]byte(src), []byte(repl)))
}

// ReplaceAll returns a copy of src, replacing matches of the pattern with
// repl. Inside repl, $0 is the entire match, $1..$9 the last text captured
// by that group, ${name} or ${12} a named or numbered group, and $$ a
// literal dollar sign.
//
// Example:
//
//	re := pcregex.MustCompile(`(?<user>\w+)@(\w+)\.com`)
//	result := re.ReplaceAll([]byte("joe@example.com"), []byte("${user} at $2"))
//	// result = []byte("joe at example")
func (r *Regex) ReplaceAll(src, repl []byte) []byte {
	out := make([]byte, 0, len(src))
	last := 0
	for _, s := range r.engine.FindAllSpans(src, -1) {
		out = append(out, src[last:s.Start]...)
		caps := r.engine.CapturesAt(src, s.Start)
		out = r.expand(out, repl, caps)
		last = s.End
	}
	return append(out, src[last:]...)
}

// ReplaceAllString is ReplaceAll for strings.
func (r *Regex) ReplaceAllString(src, repl string) string {
	return string(r.ReplaceAll([]byte(src), []byte(repl)))
}

// expand appends template to dst, substituting group references.
func (r *Regex) expand(dst, template []byte, caps *Captures) []byte {
	group := func(i int) []byte {
		if caps == nil {
			return nil
		}
		return caps.Text(i)
	}
	for i := 0; i < len(template); i++ {
		c := template[i]
		if c != '$' || i+1 >= len(template) {
			dst = append(dst, c)
			continue
		}
		next := template[i+1]
		switch {
		case next == '$':
			dst = append(dst, '$')
			i++
		case next >= '0' && next <= '9':
			dst = append(dst, group(int(next-'0'))...)
			i++
		case next == '{':
			end := i + 2
			for end < len(template) && template[end] != '}' {
				end++
			}
			if end == len(template) {
				dst = append(dst, c)
				continue
			}
			dst = append(dst, group(r.groupRef(string(template[i+2:end])))...)
			i = end
		default:
			dst = append(dst, c)
		}
	}
	return dst
}

// groupRef resolves a ${...} reference to a group number, or -1.
func (r *Regex) groupRef(ref string) int {
	n := 0
	for i := 0; i < len(ref); i++ {
		if ref[i] < '0' || ref[i] > '9' {
			return r.SubexpIndex(ref)
		}
		n = n*10 + int(ref[i]-'0')
	}
	if ref == "" {
		return -1
	}
	return n
}

// Split slices s into substrings separated by the matches of the pattern.
// If n >= 0, returns at most n substrings; the last one is the unsplit
// remainder.
//
// Example:
//
//	re := pcregex.MustCompile(`,\s*`)
//	parts := re.Split("a, b,c", -1)
//	// parts = ["a", "b", "c"]
func (r *Regex) Split(s string, n int) []string {
	if n == 0 {
		return nil
	}
	spans := r.engine.FindAllSpans([]byte(s), -1)
	out := make([]string, 0, len(spans)+1)
	last := 0
	for _, sp := range spans {
		if n > 0 && len(out) == n-1 {
			break
		}
		if sp.End == 0 {
			continue
		}
		out = append(out, s[last:sp.Start])
		last = sp.End
	}
	return append(out, s[last:])
}
