package docstore

// Record is one JSON-like object belonging to a collection. Values are what
// encoding/json produces for untyped data: string, float64, bool, nil,
// []any and map[string]any.
type Record map[string]any

// Clone returns a deep copy of the record. Stores hand out clones so callers
// cannot mutate cached state.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = cloneValue(v)
	}
	return c
}

// ID returns the record's "id" field, or "" if absent or not a string.
func (r Record) ID() string {
	return r.StringField("id")
}

// StringField returns the named field as a string, or "" if absent or of
// another type.
func (r Record) StringField(key string) string {
	s, _ := r[key].(string)
	return s
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		c := make(map[string]any, len(t))
		for k, e := range t {
			c[k] = cloneValue(e)
		}
		return c
	case Record:
		return map[string]any(t.Clone())
	case []any:
		c := make([]any, len(t))
		for i, e := range t {
			c[i] = cloneValue(e)
		}
		return c
	default:
		return v
	}
}

// CloneRecords deep-copies a record slice.
func CloneRecords(rows []Record) []Record {
	if rows == nil {
		return nil
	}
	out := make([]Record, len(rows))
	for i, r := range rows {
		out[i] = r.Clone()
	}
	return out
}
