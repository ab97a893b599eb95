package field

import (
	"fmt"
	"strconv"
	"time"
)

// A Type represents a field type.
type Type uint8

// List of field types.
const (
	TypeInvalid Type = iota
	TypeBool
	TypeTime
	TypeInt64
	TypeString
	TypeText
	endTypes
)

var (
	typeNames = [...]string{
		TypeInvalid: "invalid",
		TypeBool:    "bool",
		TypeTime:    "time.Time",
		TypeInt64:   "int64",
		TypeString:  "string",
		TypeText:    "string",
	}
	constNames = [...]string{
		TypeInvalid: "TypeInvalid",
		TypeBool:    "TypeBool",
		TypeTime:    "TypeTime",
		TypeInt64:   "TypeInt64",
		TypeString:  "TypeString",
		TypeText:    "TypeText",
	}
)

// String returns the string representation of a type.
func (t Type) String() string {
	if t < endTypes {
		return typeNames[t]
	}
	return typeNames[TypeInvalid]
}

// ConstName returns the constant name of a type.
func (t Type) ConstName() string {
	if t < endTypes && t > TypeInvalid {
		return constNames[t]
	}
	return "invalid"
}

// Valid reports if the given type if known type.
func (t Type) Valid() bool {
	return t > TypeInvalid && t < endTypes
}

// TypeInfo holds the information regarding field type.
type TypeInfo struct {
	Type Type
}

// Descriptor for fields configuration.
type Descriptor struct {
	Name      string    // field name.
	Info      *TypeInfo // field type info.
	Unique    bool      // unique index of field.
	Optional  bool      // may be omitted on create.
	Nillable  bool      // nullable column.
	Immutable bool      // create only field.
	Default   any       // default value on create.
	Comment   string    // field comment.
}

// Coerce converts a value read from, or written to, the database into the
// Go representation of the field type. SQLite returns booleans as int64 and
// some drivers return text columns as []byte. A nil value is kept nil.
func (d *Descriptor) Coerce(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if p, ok := v.(*string); ok {
		if p == nil {
			return nil, nil
		}
		v = *p
	}
	switch d.Info.Type {
	case TypeBool:
		switch v := v.(type) {
		case bool:
			return v, nil
		case []byte:
			return strconv.ParseBool(string(v))
		case string:
			return strconv.ParseBool(v)
		}
		if n, ok := integer(v); ok {
			return n != 0, nil
		}
	case TypeInt64:
		if n, ok := integer(v); ok {
			return n, nil
		}
		switch v := v.(type) {
		case float64:
			return int64(v), nil
		case []byte:
			return strconv.ParseInt(string(v), 10, 64)
		case string:
			return strconv.ParseInt(v, 10, 64)
		}
	case TypeString, TypeText:
		switch v := v.(type) {
		case string:
			return v, nil
		case []byte:
			return string(v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
	case TypeTime:
		switch v := v.(type) {
		case time.Time:
			return v, nil
		case string:
			return parseTime(v)
		case []byte:
			return parseTime(string(v))
		}
	}
	return nil, fmt.Errorf("field: cannot use %T as %s for field %q", v, d.Info.Type, d.Name)
}

// integer converts the integer kinds returned by drivers and decoders.
func integer(v any) (int64, bool) {
	switch v := v.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case uint64:
		return int64(v), true
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("field: unrecognized time format %q", s)
}

// Bool returns a new Field with type bool.
func Bool(name string) *boolBuilder {
	return &boolBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeBool},
	}}
}

// String returns a new Field with type string.
func String(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeString},
	}}
}

// Text returns a new string field without a size limit.
func Text(name string) *stringBuilder {
	return &stringBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeText},
	}}
}

// Int64 returns a new Field with type int64.
func Int64(name string) *int64Builder {
	return &int64Builder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeInt64},
	}}
}

// Time returns a new Field with type timestamp.
func Time(name string) *timeBuilder {
	return &timeBuilder{&Descriptor{
		Name: name,
		Info: &TypeInfo{Type: TypeTime},
	}}
}

// boolBuilder is the builder for boolean fields.
type boolBuilder struct {
	desc *Descriptor
}

// Default sets the default value of the field.
func (b *boolBuilder) Default(v bool) *boolBuilder {
	b.desc.Default = v
	return b
}

// Optional indicates that this field is optional on create.
func (b *boolBuilder) Optional() *boolBuilder {
	b.desc.Optional = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *boolBuilder) Immutable() *boolBuilder {
	b.desc.Immutable = true
	return b
}

// Comment sets the comment of the field.
func (b *boolBuilder) Comment(c string) *boolBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the modelkit.Field interface by returning its descriptor.
func (b *boolBuilder) Descriptor() *Descriptor {
	return b.desc
}

// stringBuilder is the builder for string fields.
type stringBuilder struct {
	desc *Descriptor
}

// Unique makes the field unique within all vertices of this type.
func (b *stringBuilder) Unique() *stringBuilder {
	b.desc.Unique = true
	return b
}

// Default sets the default value of the field.
func (b *stringBuilder) Default(s string) *stringBuilder {
	b.desc.Default = s
	return b
}

// Optional indicates that this field is optional on create.
func (b *stringBuilder) Optional() *stringBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is a nullable.
func (b *stringBuilder) Nillable() *stringBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *stringBuilder) Immutable() *stringBuilder {
	b.desc.Immutable = true
	return b
}

// Comment sets the comment of the field.
func (b *stringBuilder) Comment(c string) *stringBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the modelkit.Field interface by returning its descriptor.
func (b *stringBuilder) Descriptor() *Descriptor {
	return b.desc
}

// int64Builder is the builder for int64 fields.
type int64Builder struct {
	desc *Descriptor
}

// Default sets the default value of the field.
func (b *int64Builder) Default(i int64) *int64Builder {
	b.desc.Default = i
	return b
}

// Optional indicates that this field is optional on create.
func (b *int64Builder) Optional() *int64Builder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is a nullable.
func (b *int64Builder) Nillable() *int64Builder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *int64Builder) Immutable() *int64Builder {
	b.desc.Immutable = true
	return b
}

// Comment sets the comment of the field.
func (b *int64Builder) Comment(c string) *int64Builder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the modelkit.Field interface by returning its descriptor.
func (b *int64Builder) Descriptor() *Descriptor {
	return b.desc
}

// timeBuilder is the builder for time fields.
type timeBuilder struct {
	desc *Descriptor
}

// Default sets the function that is applied to set the default value
// of the field on creation.
func (b *timeBuilder) Default(fn func() time.Time) *timeBuilder {
	b.desc.Default = fn
	return b
}

// Optional indicates that this field is optional on create.
func (b *timeBuilder) Optional() *timeBuilder {
	b.desc.Optional = true
	return b
}

// Nillable indicates that this field is a nullable.
func (b *timeBuilder) Nillable() *timeBuilder {
	b.desc.Nillable = true
	return b
}

// Immutable indicates that this field cannot be updated.
func (b *timeBuilder) Immutable() *timeBuilder {
	b.desc.Immutable = true
	return b
}

// Comment sets the comment of the field.
func (b *timeBuilder) Comment(c string) *timeBuilder {
	b.desc.Comment = c
	return b
}

// Descriptor implements the modelkit.Field interface by returning its descriptor.
func (b *timeBuilder) Descriptor() *Descriptor {
	return b.desc
}

// DefaultValue returns the value a create mutation uses when the field was
// not set, and whether such a default exists.
func (d *Descriptor) DefaultValue() (any, bool) {
	switch v := d.Default.(type) {
	case nil:
		return nil, false
	case func() time.Time:
		return v(), true
	default:
		return v, true
	}
}
