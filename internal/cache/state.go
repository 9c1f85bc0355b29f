package cache

// ContentState is the tri-state sentinel the Design Notes require for a
// post's cached body: a post's content can be genuinely absent, genuinely
// empty, or holding real text, and these three must stay distinguishable
// across a cache reload (an empty string on disk is not the same as "we
// never fetched this field").
type ContentState struct {
	set  bool
	text string
}

// ContentUnset is the zero value: content was never populated.
var ContentUnset = ContentState{}

// ContentEmpty marks a post whose body was fetched and is the empty string.
func ContentEmpty() ContentState { return ContentState{set: true, text: ""} }

// ContentText marks a post whose body was fetched and is non-empty.
func ContentText(s string) ContentState { return ContentState{set: true, text: s} }

// IsSet reports whether the content has been fetched at all.
func (c ContentState) IsSet() bool { return c.set }

// Text returns the cached text and whether it was set.
func (c ContentState) Text() (string, bool) { return c.text, c.set }

// MarshalJSON encodes unset as JSON null, set-empty as "", set-text as the string.
func (c ContentState) MarshalJSON() ([]byte, error) {
	if !c.set {
		return []byte("null"), nil
	}
	return marshalString(c.text), nil
}

// UnmarshalJSON decodes JSON null back into ContentUnset.
func (c *ContentState) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ContentUnset
		return nil
	}
	s, err := unmarshalString(data)
	if err != nil {
		return err
	}
	*c = ContentState{set: true, text: s}
	return nil
}
