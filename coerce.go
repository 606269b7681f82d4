// coerce.go
package chatstore

// Recognized setting tokens. Anything outside these two sets passes through
// Coerce unchanged.
var (
	truthyTokens = map[string]struct{}{"ok": {}, "on": {}, "yes": {}}
	falsyTokens  = map[string]struct{}{"notok": {}, "off": {}, "no": {}}
)

// Coerce maps a raw stored setting value onto the tri-state contract:
// booleans pass through, the recognized truthy tokens become true, the
// recognized falsy tokens become false, and every other value (numbers, nil,
// unrecognized strings) is returned unchanged. Callers must not assume the
// result is a bool.
func Coerce(v any) any {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		if _, ok := truthyTokens[t]; ok {
			return true
		}
		if _, ok := falsyTokens[t]; ok {
			return false
		}
	}
	return v
}

// IsTrue reports whether Coerce(v) is exactly boolean true.
func IsTrue(v any) bool {
	b, ok := Coerce(v).(bool)
	return ok && b
}
