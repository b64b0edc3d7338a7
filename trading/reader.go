package trading

import (
	"errors"
	"fmt"
	"time"

	"github.com/mdzio/go-ebay/record"
)

// fieldReader converts optional fields of a record. Absent fields yield the
// zero value. The first conversion error is kept.
type fieldReader struct {
	rec *record.Record
	err error
}

func (f *fieldReader) fail(name string, err error) {
	if f.err == nil && !errors.Is(err, record.ErrAbsent) {
		f.err = fmt.Errorf("Field %s: %w", name, err)
	}
}

func (f *fieldReader) str(path string) string {
	return f.rec.Path(path).String()
}

// scalar returns nil for absent fields and empty elements.
func (f *fieldReader) scalar(path string) *record.Record {
	r := f.rec.Path(path)
	if !r.IsMap() && !r.IsSlice() && r.String() == "" {
		return nil
	}
	return r
}

func (f *fieldReader) int(path string) int {
	i, err := f.scalar(path).Int()
	if err != nil {
		f.fail(path, err)
	}
	return i
}

func (f *fieldReader) float(path string) float64 {
	v, err := f.scalar(path).Float64()
	if err != nil {
		f.fail(path, err)
	}
	return v
}

func (f *fieldReader) bool(path string) bool {
	b, err := f.scalar(path).Bool()
	if err != nil {
		f.fail(path, err)
	}
	return b
}

func (f *fieldReader) time(path string) time.Time {
	t, err := f.scalar(path).Time()
	if err != nil {
		f.fail(path, err)
	}
	return t
}

func (f *fieldReader) strs(path string) []string {
	items := f.rec.Path(path).Items()
	if items == nil {
		return nil
	}
	l := make([]string, len(items))
	for i, it := range items {
		l[i] = it.String()
	}
	return l
}

func (f *fieldReader) amount(path string) Amount {
	var a Amount
	if err := a.ReadFrom(f.rec.Path(path)); err != nil {
		f.fail(path, err)
	}
	return a
}
