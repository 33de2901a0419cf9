package vectorstore

// MetaString returns the string stored under key, or "" when absent.
func MetaString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}

// MetaInt returns the integer stored under key. Qdrant hands integers back as
// int64 and whole doubles as float64; both are accepted.
func MetaInt(meta map[string]any, key string) (int, bool) {
	switch v := meta[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		if v == float64(int64(v)) {
			return int(v), true
		}
	}
	return 0, false
}
