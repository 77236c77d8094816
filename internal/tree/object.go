package tree

// Object is an insertion-ordered JSON object. Template key iteration order
// must follow the template's declared key order (spec §5 "Ordering"), and
// the source payload's own key order must survive a decode/encode
// round-trip, so a plain Go map cannot back this type.
type Object struct {
	keys   []string
	values map[string]Node
}

// NewObject returns an empty ordered object with capacity hinted by size.
func NewObject(size int) *Object {
	return &Object{
		keys:   make([]string, 0, size),
		values: make(map[string]Node, size),
	}
}

// Get returns the value for key and whether it was present.
func (o *Object) Get(key string) (Node, bool) {
	if o == nil {
		return Missing, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Set inserts or replaces key's value, appending to the key order on first
// insertion and leaving it in place on replacement.
func (o *Object) Set(key string, v Node) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

// Keys returns the object's keys in declaration order. The caller must not
// mutate the returned slice.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.keys
}

// Len returns the number of entries.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}
