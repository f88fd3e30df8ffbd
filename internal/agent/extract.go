package agent

import "encoding/json"

// extractor probes one known response shape and returns "" on a miss.
type extractor func(raw any) string

// Ordered by how often each shape has been observed in practice. First
// non-empty result wins.
var extractors = []extractor{
	func(raw any) string { // result.artifacts[0].parts[0].text
		result := asMap(field(raw, "result"))
		artifacts := asSlice(result["artifacts"])
		if len(artifacts) == 0 {
			return ""
		}
		parts := asSlice(asMap(artifacts[0])["parts"])
		if len(parts) == 0 {
			return ""
		}
		return asString(asMap(parts[0])["text"])
	},
	func(raw any) string { // top-level text
		return asString(field(raw, "text"))
	},
	func(raw any) string { // content.text
		return asString(asMap(field(raw, "content"))["text"])
	},
	func(raw any) string { // message.content
		return asString(asMap(field(raw, "message"))["content"])
	},
	func(raw any) string { // top-level response
		return asString(field(raw, "response"))
	},
}

// ExtractText pulls a human-readable string out of an arbitrarily shaped
// agent response. The remote agent's schema is not under this system's
// control, so missing or mistyped fields are treated as a non-match, never
// an error; the final fallback embeds the serialized response so the
// caller always receives some text.
func ExtractText(raw any) string {
	for _, extract := range extractors {
		if text := extract(raw); text != "" {
			return text
		}
	}
	serialized, err := json.Marshal(raw)
	if err != nil {
		serialized = []byte("null")
	}
	return "Received response but no text field found. Raw response: " + string(serialized)
}

func field(raw any, key string) any {
	return asMap(raw)[key]
}

func asMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asSlice(v any) []any {
	s, _ := v.([]any)
	return s
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
