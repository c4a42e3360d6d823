package sanitize

import "strings"

// Fields: копия raw, где пустые и пробельные строки заменены на nil
func Fields(raw map[string]any) map[string]any {
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			out[k] = nil
			continue
		}
		out[k] = v
	}
	return out
}
