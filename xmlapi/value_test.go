package xmlapi

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mdzio/go-ebay/record"
)

type stringer struct{}

func (stringer) String() string { return "stringer" }

func TestSerialize(t *testing.T) {
	cases := []struct {
		in   interface{}
		want string
	}{
		{
			map[string]interface{}{"foo": "Bar"},
			"<foo>Bar</foo>",
		},
		{
			map[string]interface{}{"foo": []interface{}{"Bar", "Baz"}},
			"<foo>Bar</foo><foo>Baz</foo>",
		},
		{
			map[string]interface{}{"foo": map[string]interface{}{
				"value": "Bar",
				"attr":  map[string]interface{}{"name": "baz"},
			}},
			`<foo name="baz">Bar</foo>`,
		},
		{
			// empty sequence under a key renders nothing
			map[string]interface{}{"foo": []interface{}{}, "bar": "x"},
			"<bar>x</bar>",
		},
		{
			// only "attr": ordinary nested tag
			map[string]interface{}{"foo": map[string]interface{}{
				"attr": map[string]interface{}{"name": "baz"},
			}},
			"<foo><attr><name>baz</name></attr></foo>",
		},
		{
			// only "value": ordinary nested tag
			map[string]interface{}{"foo": map[string]interface{}{"value": "Bar"}},
			"<foo><value>Bar</value></foo>",
		},
		{
			// additional keys: ordinary nested tags
			map[string]interface{}{"foo": map[string]interface{}{
				"value": "Bar",
				"attr":  map[string]interface{}{"name": "baz"},
				"other": "x",
			}},
			"<foo><attr><name>baz</name></attr><other>x</other><value>Bar</value></foo>",
		},
		{
			// the reserved pair at top level is an ordinary mapping
			map[string]interface{}{
				"value": "v",
				"attr":  map[string]interface{}{"a": "1"},
			},
			"<attr><a>1</a></attr><value>v</value>",
		},
		{
			// same for elements of a sequence under a key
			map[string]interface{}{"foo": []interface{}{
				map[string]interface{}{
					"value": "Bar",
					"attr":  map[string]interface{}{"name": "baz"},
				},
			}},
			"<foo><attr><name>baz</name></attr><value>Bar</value></foo>",
		},
		{
			// and for elements of a top level sequence
			[]interface{}{map[string]interface{}{
				"value": "v",
				"attr":  map[string]interface{}{"a": "1"},
			}},
			"<attr><a>1</a></attr><value>v</value>",
		},
		{
			// attributes in sorted order for native maps
			map[string]interface{}{"Price": map[string]interface{}{
				"value": 9.5,
				"attr":  map[string]string{"currencyID": "USD", "a": "1"},
			}},
			`<Price a="1" currencyID="USD">9.5</Price>`,
		},
		{
			map[string]interface{}{},
			"",
		},
		{
			// top level sequence: no wrapping tag
			[]interface{}{map[string]interface{}{"a": 1}, map[string]interface{}{"b": true}},
			"<a>1</a><b>true</b>",
		},
		{
			// sequence of mappings: repeated tags
			map[string]interface{}{"Item": []map[string]interface{}{{"ID": "1"}, {"ID": "2"}}},
			"<Item><ID>1</ID></Item><Item><ID>2</ID></Item>",
		},
		{
			map[string]interface{}{"a": map[string]interface{}{"b": map[string]interface{}{"c": "d"}}},
			"<a><b><c>d</c></b></a>",
		},
		{nil, ""},
		{"text", "text"},
		{42, "42"},
		{int8(-3), "-3"},
		{uint(7), "7"},
		{false, "false"},
		{1.25, "1.25"},
		{float32(0.5), "0.5"},
		{stringer{}, "stringer"},
		{struct{ A int }{1}, "{1}"},
		{map[string]interface{}{"nil": nil}, "<nil></nil>"},
	}
	for i, c := range cases {
		got := Serialize(c.in)
		if got != c.want {
			t.Errorf("unexpected xml in test case %d: want: %s got: %s", i+1, c.want, got)
		}
	}
}

func TestSerialize_Variadic(t *testing.T) {
	got := Serialize(map[string]interface{}{"a": 1}, map[string]interface{}{"b": 2}, "c")
	assert.Equal(t, "<a>1</a><b>2</b>c", got)
}

func TestSerialize_Time(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	cases := []struct {
		in   time.Time
		want string
	}{
		{time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), "2024-01-02T03:04:05Z"},
		{time.Date(2024, 1, 2, 4, 4, 5, 0, loc), "2024-01-02T03:04:05Z"},
		{time.Date(2024, 1, 2, 3, 4, 5, 120000000, time.UTC), "2024-01-02T03:04:05.12Z"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Serialize(c.in))
		assert.Equal(t, "<T>"+c.want+"</T>", Serialize(map[string]interface{}{"T": &c.in}))
	}
	var nilTime *time.Time
	assert.Equal(t, "", Serialize(nilTime))
}

func TestSerialize_Ordered(t *testing.T) {
	in := Mapping{
		M("ItemID", "110"),
		M("DetailLevel", []string{"ReturnAll", "ItemReturnAttributes"}),
		{Name: "StartPrice", Value: WithAttrs(1.5, Attr{"currencyID", "EUR"}, Attr{"b", "2"})},
		{Name: "Picture", Value: Sequence{
			WithAttrs("a.jpg", Attr{"n", "1"}),
			Scalar("b.jpg"),
		}},
		M("Empty", Mapping{}),
	}
	want := "<ItemID>110</ItemID>" +
		"<DetailLevel>ReturnAll</DetailLevel><DetailLevel>ItemReturnAttributes</DetailLevel>" +
		`<StartPrice currencyID="EUR" b="2">1.5</StartPrice>` +
		`<Picture n="1">a.jpg</Picture><Picture>b.jpg</Picture>` +
		"<Empty></Empty>"
	assert.Equal(t, want, Serialize(in))

	// an attributed value outside of a mapping renders its content only
	assert.Equal(t, "x", Serialize(WithAttrs("x", Attr{"a", "b"})))
}

func TestSerialize_NoEscaping(t *testing.T) {
	// callers escape content themselves
	got := Serialize(map[string]interface{}{"a": "x &amp; y"})
	assert.Equal(t, "<a>x &amp; y</a>", got)
}

func TestSerialize_Record(t *testing.T) {
	r := record.New(map[string]interface{}{
		"Amount": map[string]interface{}{
			"value": "3.0",
			"attr":  map[string]interface{}{"currencyID": "USD"},
		},
	})
	assert.Equal(t, `<Amount currencyID="USD">3.0</Amount>`, Serialize(r))

	// attr given as record
	in := map[string]interface{}{"A": map[string]interface{}{
		"value": "v",
		"attr":  record.New(map[string]interface{}{"k": "x"}),
	}}
	assert.Equal(t, `<A k="x">v</A>`, Serialize(in))
}

func TestM(t *testing.T) {
	pair := map[string]interface{}{"value": 1.5, "attr": map[string]string{"currencyID": "EUR"}}
	assert.Equal(t,
		Member{Name: "Price", Value: Attributed{Value: Scalar("1.5"), Attrs: []Attr{{"currencyID", "EUR"}}}},
		M("Price", pair))
	assert.Equal(t, `<Price currencyID="EUR">1.5</Price>`, Serialize(Mapping{M("Price", record.New(pair))}))
	assert.Equal(t, Member{Name: "Price", Value: Scalar("1.5")}, M("Price", 1.5))
}

func TestNewValue(t *testing.T) {
	cases := []struct {
		in   interface{}
		want Value
	}{
		{"abc", Scalar("abc")},
		{true, Scalar("true")},
		{int64(5), Scalar("5")},
		{[]string{"a"}, Sequence{Scalar("a")}},
		{map[string]interface{}{"k": 1}, Mapping{{"k", Scalar("1")}}},
		{
			map[string]interface{}{"value": "v", "attr": map[string]interface{}{"a": 1}},
			Mapping{{"attr", Mapping{{"a", Scalar("1")}}}, {"value", Scalar("v")}},
		},
		{Scalar("kept"), Scalar("kept")},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, NewValue(c.in))
	}
}
