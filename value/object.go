package value

// Field is a key/value pair used to construct objects in order.
type Field struct {
	Key   string
	Value Value
}

// Object is an ordered mapping with unique keys. It is never mutated once
// wrapped in a Value.
type Object struct {
	keys   []string
	fields map[string]Value
}

// NewObject builds an object value. A repeated key keeps its first position
// and takes the last value.
func NewObject(fields ...Field) Value {
	b := NewObjectBuilder(len(fields))
	for _, f := range fields {
		b.Set(f.Key, f.Value)
	}
	return b.Build()
}

// Len returns the number of keys. A nil object is empty.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns the keys in document order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (Value, bool) {
	if o == nil {
		return Null, false
	}
	v, ok := o.fields[key]
	return v, ok
}

// Range calls fn for every field in order until fn returns false.
func (o *Object) Range(fn func(key string, v Value) bool) {
	if o == nil {
		return
	}
	for _, key := range o.keys {
		if !fn(key, o.fields[key]) {
			return
		}
	}
}

// ObjectBuilder accumulates fields for a new object.
type ObjectBuilder struct {
	keys   []string
	fields map[string]Value
}

func NewObjectBuilder(capacity int) *ObjectBuilder {
	return &ObjectBuilder{
		keys:   make([]string, 0, capacity),
		fields: make(map[string]Value, capacity),
	}
}

// Set stores v under key, keeping the original position of an existing key.
func (b *ObjectBuilder) Set(key string, v Value) {
	if _, exists := b.fields[key]; !exists {
		b.keys = append(b.keys, key)
	}
	b.fields[key] = v
}

// Get returns the value currently stored under key.
func (b *ObjectBuilder) Get(key string) (Value, bool) {
	v, ok := b.fields[key]
	return v, ok
}

// Len returns the number of keys set so far.
func (b *ObjectBuilder) Len() int {
	return len(b.keys)
}

// Build returns an object value detached from the builder.
func (b *ObjectBuilder) Build() Value {
	obj := &Object{
		keys:   make([]string, len(b.keys)),
		fields: make(map[string]Value, len(b.fields)),
	}
	copy(obj.keys, b.keys)
	for key, v := range b.fields {
		obj.fields[key] = v
	}
	return Value{kind: KindObject, object: obj}
}
