package xmlapi

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/mdzio/go-ebay/record"
)

// TimeFormat is the ISO-8601 layout for timestamps in requests. Timestamps
// are converted to UTC before formatting.
const TimeFormat = "2006-01-02T15:04:05.999Z"

// Value is a structured value which renders itself as XML fragment. The
// implementations are Scalar, Sequence, Mapping and Attributed.
//
// Text content and attribute values are written as is. Callers must escape
// &, < and > themselves, if the content is not trusted.
type Value interface {
	appendXML(b *strings.Builder)
}

// Scalar is formatted text content.
type Scalar string

func (s Scalar) appendXML(b *strings.Builder) {
	b.WriteString(string(s))
}

// Sequence renders its elements one after another. Under a Mapping key each
// element gets its own element tag.
type Sequence []Value

func (s Sequence) appendXML(b *strings.Builder) {
	for _, e := range s {
		if e != nil {
			e.appendXML(b)
		}
	}
}

// Member is a named value of a Mapping.
type Member struct {
	Name  string
	Value Value
}

// M creates a Member from a native value (see NewValue). A native map with
// exactly the keys "value" and "attr" becomes an Attributed.
func M(name string, v interface{}) Member {
	return Member{Name: name, Value: memberValue(v)}
}

// Mapping renders its members as elements in order.
type Mapping []Member

func (m Mapping) appendXML(b *strings.Builder) {
	for _, mem := range m {
		switch v := mem.Value.(type) {
		case Sequence:
			// one element per entry, nothing for an empty sequence
			for _, e := range v {
				if a, ok := e.(Attributed); ok {
					writeElement(b, mem.Name, a.Attrs, a.Value)
				} else {
					writeElement(b, mem.Name, nil, e)
				}
			}
		case Attributed:
			writeElement(b, mem.Name, v.Attrs, v.Value)
		default:
			writeElement(b, mem.Name, nil, v)
		}
	}
}

// Attr is an XML attribute.
type Attr struct {
	Name  string
	Value string
}

// Attributed is a value whose element carries attributes. Outside of a
// Mapping only the inner value is rendered.
type Attributed struct {
	Value Value
	Attrs []Attr
}

// WithAttrs creates an Attributed from a native value.
func WithAttrs(v interface{}, attrs ...Attr) Attributed {
	return Attributed{Value: NewValue(v), Attrs: attrs}
}

func (a Attributed) appendXML(b *strings.Builder) {
	if a.Value != nil {
		a.Value.appendXML(b)
	}
}

func writeElement(b *strings.Builder, name string, attrs []Attr, v Value) {
	b.WriteByte('<')
	b.WriteString(name)
	for _, a := range attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		b.WriteString(`="`)
		b.WriteString(a.Value)
		b.WriteByte('"')
	}
	b.WriteByte('>')
	if v != nil {
		v.appendXML(b)
	}
	b.WriteString("</")
	b.WriteString(name)
	b.WriteByte('>')
}

// Serialize renders the values as XML fragment. The fragments of multiple
// values are concatenated. Native Go values are converted with NewValue.
func Serialize(values ...interface{}) string {
	var b strings.Builder
	for _, v := range values {
		NewValue(v).appendXML(&b)
	}
	return b.String()
}

// NewValue converts a native Go value into a Value:
//
//	nil                         -> empty Scalar
//	Value                       -> unchanged
//	string, bool, numbers       -> Scalar with natural text form
//	time.Time                   -> Scalar in TimeFormat (UTC)
//	*record.Record              -> conversion of the wrapped value
//	map with string keys        -> Mapping in sorted key order
//	slice, array                -> Sequence
//
// A map member whose value is a map with exactly the keys "value" and "attr",
// "attr" being a map, becomes an Attributed. Everywhere else (top level,
// sequence elements) such a map is an ordinary Mapping.
//
// Anything else is converted with fmt.Sprint. NewValue never fails.
func NewValue(in interface{}) Value {
	switch v := in.(type) {
	case nil:
		return Scalar("")
	case Value:
		return v
	case string:
		return Scalar(v)
	case []byte:
		return Scalar(v)
	case bool:
		return Scalar(strconv.FormatBool(v))
	case int:
		return Scalar(strconv.Itoa(v))
	case int64:
		return Scalar(strconv.FormatInt(v, 10))
	case float64:
		return Scalar(strconv.FormatFloat(v, 'f', -1, 64))
	case float32:
		return Scalar(strconv.FormatFloat(float64(v), 'f', -1, 32))
	case time.Time:
		return Scalar(v.UTC().Format(TimeFormat))
	case *time.Time:
		if v == nil {
			return Scalar("")
		}
		return Scalar(v.UTC().Format(TimeFormat))
	case *record.Record:
		return NewValue(v.Value())
	case map[string]interface{}:
		return newMapValue(v)
	case []interface{}:
		s := make(Sequence, len(v))
		for i, e := range v {
			s[i] = NewValue(e)
		}
		return s
	case fmt.Stringer:
		return Scalar(v.String())
	}

	rv := reflect.ValueOf(in)
	switch rv.Kind() {
	case reflect.Map:
		if m, ok := stringMap(rv); ok {
			return newMapValue(m)
		}
	case reflect.Slice, reflect.Array:
		s := make(Sequence, rv.Len())
		for i := range s {
			s[i] = NewValue(rv.Index(i).Interface())
		}
		return s
	case reflect.Ptr:
		if rv.IsNil() {
			return Scalar("")
		}
		return NewValue(rv.Elem().Interface())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Scalar(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Scalar(strconv.FormatUint(rv.Uint(), 10))
	}
	// lenient: unsupported shapes degrade to their text form
	return Scalar(fmt.Sprint(in))
}

func stringMap(rv reflect.Value) (map[string]interface{}, bool) {
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]interface{}, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

func newMapValue(m map[string]interface{}) Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	mp := make(Mapping, len(keys))
	for i, k := range keys {
		mp[i] = Member{Name: k, Value: memberValue(m[k])}
	}
	return mp
}

// memberValue converts the value of a map member.
func memberValue(v interface{}) Value {
	var m map[string]interface{}
	switch val := v.(type) {
	case map[string]interface{}:
		m = val
	case *record.Record:
		m, _ = val.Value().(map[string]interface{})
	case Value, nil:
	default:
		m, _ = stringMap(reflect.ValueOf(v))
	}
	if m != nil {
		if a, ok := attributed(m); ok {
			return a
		}
	}
	return NewValue(v)
}

// attributed checks for exactly the reserved key pair "value" and "attr".
func attributed(m map[string]interface{}) (Attributed, bool) {
	if len(m) != 2 {
		return Attributed{}, false
	}
	v, ok := m["value"]
	if !ok {
		return Attributed{}, false
	}
	av, ok := m["attr"]
	if !ok {
		return Attributed{}, false
	}
	var am map[string]interface{}
	switch a := av.(type) {
	case map[string]interface{}:
		am = a
	case *record.Record:
		if !a.IsMap() {
			return Attributed{}, false
		}
		am = make(map[string]interface{}, a.Len())
		for _, k := range a.Keys() {
			am[k] = a.Get(k).Value()
		}
	default:
		if am, ok = stringMap(reflect.ValueOf(av)); !ok {
			return Attributed{}, false
		}
	}
	names := make([]string, 0, len(am))
	for n := range am {
		names = append(names, n)
	}
	sort.Strings(names)
	attrs := make([]Attr, len(names))
	for i, n := range names {
		attrs[i] = Attr{Name: n, Value: Serialize(am[n])}
	}
	return Attributed{Value: NewValue(v), Attrs: attrs}, true
}
