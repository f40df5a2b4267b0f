package redisserver

// matchGlob matches s against a Redis-style glob pattern.
// Supports:
//   - * any run of characters
//   - ? exactly one character
//   - [abc], [^abc], [a-z] character classes
//   - \x the literal x
//
// Examples:
//   - "user:*" matches "user:42"
//   - "h?llo" matches "hello" and "hallo"
//   - "h[^e]llo" matches "hallo" but not "hello"
func matchGlob(pattern, s string) bool {
	for len(pattern) > 0 {
		switch pattern[0] {
		case '*':
			for len(pattern) > 1 && pattern[1] == '*' {
				pattern = pattern[1:]
			}
			if len(pattern) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchGlob(pattern[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			s = s[1:]
			pattern = pattern[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			matched, rest, ok := matchClass(pattern[1:], s[0])
			if !ok {
				// Unterminated class: treat '[' literally.
				if s[0] != '[' {
					return false
				}
				s = s[1:]
				pattern = pattern[1:]
				continue
			}
			if !matched {
				return false
			}
			s = s[1:]
			pattern = rest
		case '\\':
			if len(pattern) >= 2 {
				pattern = pattern[1:]
			}
			fallthrough
		default:
			if len(s) == 0 || s[0] != pattern[0] {
				return false
			}
			s = s[1:]
			pattern = pattern[1:]
		}
	}
	return len(s) == 0
}

// matchClass matches c against the class body starting after '['. It
// returns the pattern remaining after ']' and ok=false if the class is not
// terminated.
func matchClass(class string, c byte) (matched bool, rest string, ok bool) {
	negate := false
	if len(class) > 0 && class[0] == '^' {
		negate = true
		class = class[1:]
	}
	for i := 0; i < len(class); i++ {
		switch {
		case class[i] == ']':
			return matched != negate, class[i+1:], true
		case class[i] == '\\' && i+1 < len(class):
			i++
			if class[i] == c {
				matched = true
			}
		case i+2 < len(class) && class[i+1] == '-' && class[i+2] != ']':
			lo, hi := class[i], class[i+2]
			if lo > hi {
				lo, hi = hi, lo
			}
			if c >= lo && c <= hi {
				matched = true
			}
			i += 2
		default:
			if class[i] == c {
				matched = true
			}
		}
	}
	return false, "", false
}
