// Package record provides a read-only view of structured data (nested maps,
// slices and scalars) as produced by the XML response parser. Keys are
// matched case-insensitively and every retrieved value is wrapped lazily, so
// optional fields can be navigated without checks in between:
//
//	r := record.New(body)
//	price := r.Get("item").Get("sellingStatus").Get("currentPrice").String()
//
// A missing key or index yields an absent record. Absent records propagate
// through further lookups and convert to zero values.
package record

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/cases"
)

// ErrAbsent is returned by the conversion methods of an absent record.
var ErrAbsent = errors.New("Value is absent")

// Record is an immutable, case-insensitive view of a map, a slice or a
// scalar. The zero value and a nil *Record are absent records.
type Record struct {
	value interface{}
	m     map[string]interface{}
	s     []interface{}

	// folded key to stored key, built on first case-insensitive lookup
	once   sync.Once
	folded map[string]string
}

// New wraps v. Wrapping an existing *Record returns it unchanged.
func New(v interface{}) *Record {
	if r, ok := v.(*Record); ok {
		if r == nil {
			return &Record{}
		}
		return r
	}
	r := &Record{value: v}
	r.m, _ = mapOf(v)
	if r.m == nil {
		r.s, _ = sliceOf(v)
	}
	return r
}

// mapOf returns v as map[string]interface{}. Other maps with string keys are
// converted (one level only).
func mapOf(v interface{}) (map[string]interface{}, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		return val, true
	case *Record:
		if val == nil {
			return nil, false
		}
		return val.m, val.m != nil
	}
	rv := reflect.ValueOf(v)
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

// sliceOf returns v as []interface{}. Other slices and arrays are converted
// (one level only). Byte slices are treated as scalars.
func sliceOf(v interface{}) ([]interface{}, bool) {
	switch val := v.(type) {
	case nil, []byte:
		return nil, false
	case []interface{}:
		return val, true
	case *Record:
		if val == nil {
			return nil, false
		}
		return val.s, val.s != nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	s := make([]interface{}, rv.Len())
	for i := range s {
		s[i] = rv.Index(i).Interface()
	}
	return s, true
}

func fold(s string) string {
	// a Caser is stateful and must not be shared between goroutines
	return cases.Fold().String(s)
}

// storedKey finds the stored key matching key. An exact match wins. If
// several stored keys fold to the same form (a violation of the data
// contract), the lexicographically smallest one is used.
func (r *Record) storedKey(key string) (string, bool) {
	if _, ok := r.m[key]; ok {
		return key, true
	}
	r.once.Do(func() {
		r.folded = make(map[string]string, len(r.m))
		for k := range r.m {
			f := fold(k)
			if prev, ok := r.folded[f]; !ok || k < prev {
				r.folded[f] = k
			}
		}
	})
	k, ok := r.folded[fold(key)]
	return k, ok
}

// wrap applies the wrapping rule: maps become records, slices get their map
// elements wrapped, scalars pass through.
func wrap(v interface{}) interface{} {
	if _, ok := v.(*Record); ok {
		return v
	}
	if _, ok := mapOf(v); ok {
		return New(v)
	}
	if s, ok := sliceOf(v); ok {
		w := make([]interface{}, len(s))
		for i, e := range s {
			if _, ok := mapOf(e); ok {
				w[i] = New(e)
			} else {
				w[i] = e
			}
		}
		return w
	}
	return v
}

// Lookup returns the wrapped value for key: a *Record for a map, a
// []interface{} (map elements as *Record) for a slice, the scalar otherwise.
// The second result is false, if r is not backed by a map or the key is
// missing.
func (r *Record) Lookup(key string) (interface{}, bool) {
	if r == nil || r.m == nil {
		return nil, false
	}
	k, ok := r.storedKey(key)
	if !ok {
		return nil, false
	}
	return wrap(r.m[k]), true
}

// Get returns the member key as record. An absent record is returned, if r
// is not backed by a map or the key is missing.
func (r *Record) Get(key string) *Record {
	if r == nil || r.m == nil {
		return &Record{}
	}
	k, ok := r.storedKey(key)
	if !ok {
		return &Record{}
	}
	return New(r.m[k])
}

// Idx returns the element at index i. An absent record is returned, if r is
// not backed by a slice or i is out of range.
func (r *Record) Idx(i int) *Record {
	if r == nil || i < 0 || i >= len(r.s) {
		return &Record{}
	}
	return New(r.s[i])
}

// Path navigates a dot separated path. Numeric segments index into slices,
// e.g. "Errors.0.ShortMessage". A numeric segment applied to a map is used
// as key.
func (r *Record) Path(path string) *Record {
	cur := r
	for _, seg := range strings.Split(path, ".") {
		if cur.IsSlice() {
			if i, err := strconv.Atoi(seg); err == nil {
				cur = cur.Idx(i)
				continue
			}
		}
		cur = cur.Get(seg)
	}
	return cur
}

// Exists returns true, if the record wraps a value.
func (r *Record) Exists() bool {
	return r != nil && r.value != nil
}

// IsMap returns true, if the record is backed by a map.
func (r *Record) IsMap() bool {
	return r != nil && r.m != nil
}

// IsSlice returns true, if the record is backed by a slice.
func (r *Record) IsSlice() bool {
	return r != nil && r.s != nil
}

// Value returns the wrapped value as is.
func (r *Record) Value() interface{} {
	if r == nil {
		return nil
	}
	return r.value
}

// Len returns the number of map members or slice elements.
func (r *Record) Len() int {
	if r == nil {
		return 0
	}
	if r.m != nil {
		return len(r.m)
	}
	return len(r.s)
}

// Keys returns the stored keys of a map in sorted order.
func (r *Record) Keys() []string {
	if r == nil || r.m == nil {
		return nil
	}
	keys := make([]string, 0, len(r.m))
	for k := range r.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Slice returns the elements of a slice as records. Nil is returned, if r is
// not backed by a slice.
func (r *Record) Slice() []*Record {
	if r == nil || r.s == nil {
		return nil
	}
	l := make([]*Record, len(r.s))
	for i, e := range r.s {
		l[i] = New(e)
	}
	return l
}

// Items is like Slice, but a present non-slice record is returned as a
// single element list. In parsed XML a repeated element that occurs only once
// is not a slice.
func (r *Record) Items() []*Record {
	if r.IsSlice() {
		return r.Slice()
	}
	if !r.Exists() {
		return nil
	}
	return []*Record{r}
}

// String returns the text form of a scalar. Absent records, maps and slices
// return an empty string.
func (r *Record) String() string {
	if r == nil || r.m != nil || r.s != nil {
		return ""
	}
	switch v := r.value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Int converts a scalar to int.
func (r *Record) Int() (int, error) {
	if !r.Exists() {
		return 0, ErrAbsent
	}
	switch v := r.value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case int32:
		return int(v), nil
	case float64:
		return int(v), nil
	}
	s := strings.TrimSpace(r.String())
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("Invalid int: %q", s)
	}
	return i, nil
}

// Float64 converts a scalar to float64.
func (r *Record) Float64() (float64, error) {
	if !r.Exists() {
		return 0, ErrAbsent
	}
	switch v := r.value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	s := strings.TrimSpace(r.String())
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("Invalid float: %q", s)
	}
	return f, nil
}

// Bool converts a scalar to bool. Accepted text forms are those of
// strconv.ParseBool.
func (r *Record) Bool() (bool, error) {
	if !r.Exists() {
		return false, ErrAbsent
	}
	if b, ok := r.value.(bool); ok {
		return b, nil
	}
	s := strings.TrimSpace(r.String())
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("Invalid bool: %q", s)
	}
	return b, nil
}

// Time converts an ISO-8601 scalar to time.Time.
func (r *Record) Time() (time.Time, error) {
	if !r.Exists() {
		return time.Time{}, ErrAbsent
	}
	if t, ok := r.value.(time.Time); ok {
		return t, nil
	}
	s := strings.TrimSpace(r.String())
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("Invalid time: %q", s)
	}
	return t, nil
}
