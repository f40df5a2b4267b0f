package logger

import (
	"fmt"
	"log/slog"
	"strings"
)

// Sensitive key patterns that should be redacted.
var sensitiveKeyPatterns = []string{
	"password",
	"secret",
	"token",
	"credential",
	"auth",
	"bearer",
}

// Attributes carrying client data, truncated to MaxPayloadLen.
var payloadKeys = map[string]bool{
	"payload": true,
	"value":   true,
	"args":    true,
}

// MaxPayloadLen is the number of bytes of a payload attribute kept in logs.
const MaxPayloadLen = 64

const redactedValue = "***REDACTED***"

// sanitizeAttr redacts credential-looking attributes and truncates payload
// attributes.
func sanitizeAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		newAttrs := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			newAttrs[i] = sanitizeAttr(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(newAttrs...)}
	case slog.KindString:
		s := a.Value.String()
		if s != "" && IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
		if payloadKeys[a.Key] {
			return slog.String(a.Key, Truncate(s))
		}
	case slog.KindAny:
		if !payloadKeys[a.Key] {
			return a
		}
		switch v := a.Value.Any().(type) {
		case []byte:
			return slog.String(a.Key, Truncate(string(v)))
		case []string:
			return slog.String(a.Key, Truncate(strings.Join(v, " ")))
		case fmt.Stringer:
			return slog.String(a.Key, Truncate(v.String()))
		}
	}
	return a
}

// Truncate shortens s to MaxPayloadLen bytes, noting the original size.
func Truncate(s string) string {
	if len(s) <= MaxPayloadLen {
		return s
	}
	return fmt.Sprintf("%s...(%d bytes)", s[:MaxPayloadLen], len(s))
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}
