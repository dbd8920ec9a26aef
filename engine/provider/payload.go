package provider

import "strconv"

// Payload is one loosely typed dataset item from the provider. Field layout
// drifts between scraper versions, so nothing here assumes a fixed schema:
// every read probes an ordered list of candidate paths and falls back to
// zero/absent.
type Payload map[string]any

// fieldPath addresses a value nested under zero or more object keys.
type fieldPath []string

// fieldPaths is the extraction table: logical field name to candidate paths
// in priority order, first match wins. New provider shapes are added here,
// not as branching in callers.
var fieldPaths = map[string][]fieldPath{
	FieldText: {
		{"text"},
		{"desc"},
	},
	FieldEngagement: {
		{"diggCount"},
		{"stats", "diggCount"},
		{"statistics", "diggCount"},
	},
	FieldPlays: {
		{"playCount"},
		{"stats", "playCount"},
		{"statistics", "playCount"},
	},
	FieldSoundName: {
		{"musicMeta", "musicName"},
		{"music", "title"},
	},
	FieldSoundURL: {
		{"musicMeta", "playUrl"},
		{"music", "playUrl"},
	},
	FieldVideoURL: {
		{"webVideoUrl"},
		{"videoUrl"},
		{"url"},
	},
}

// Logical field names understood by the extraction table.
const (
	FieldText       = "text"
	FieldEngagement = "engagement"
	FieldPlays      = "plays"
	FieldSoundName  = "soundName"
	FieldSoundURL   = "soundUrl"
	FieldVideoURL   = "videoUrl"
)

// lookup walks one candidate path through nested objects.
func (p Payload) lookup(path fieldPath) (any, bool) {
	var cur any = map[string]any(p)
	for _, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String probes the candidate paths for field and returns the first
// non-empty string value.
func (p Payload) String(field string) (string, bool) {
	for _, path := range fieldPaths[field] {
		v, ok := p.lookup(path)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s, true
		}
	}
	return "", false
}

// Int probes the candidate paths for field and returns the first numeric
// value, coercing the shapes JSON decoding produces. Missing or
// non-numeric values yield 0.
func (p Payload) Int(field string) int64 {
	for _, path := range fieldPaths[field] {
		v, ok := p.lookup(path)
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return int64(n)
		case int:
			return int64(n)
		case int64:
			return n
		case string:
			if parsed, err := strconv.ParseInt(n, 10, 64); err == nil {
				return parsed
			}
		}
	}
	return 0
}
