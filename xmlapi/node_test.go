package xmlapi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

func TestParse(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<!-- comment -->
<GetItemResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Success</Ack>
  <Item>
    <ItemID>110</ItemID>
    <PictureURL>a.jpg</PictureURL>
    <PictureURL>b.jpg</PictureURL>
    <PictureURL>c.jpg</PictureURL>
    <CurrentPrice currencyID="USD">10.5</CurrentPrice>
    <Empty/>
  </Item>
</GetItemResponse>`

	root, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "GetItemResponse", root.Name)
	assert.Empty(t, root.Attrs, "namespace declarations are dropped")
	require.Len(t, root.Children, 2)

	want := map[string]interface{}{
		"Ack": "Success",
		"Item": map[string]interface{}{
			"ItemID":     "110",
			"PictureURL": []interface{}{"a.jpg", "b.jpg", "c.jpg"},
			"CurrentPrice": map[string]interface{}{
				"value": "10.5",
				"attr":  map[string]interface{}{"currencyID": "USD"},
			},
			"Empty": "",
		},
	}
	assert.Equal(t, want, root.Structure())
}

func TestParse_ContainerAttributes(t *testing.T) {
	root, err := Parse([]byte(`<A id="1"><B>x</B></A>`))
	require.NoError(t, err)
	want := map[string]interface{}{
		"B":    "x",
		"attr": map[string]interface{}{"id": "1"},
	}
	assert.Equal(t, want, root.Structure())
}

func TestParse_Errors(t *testing.T) {
	cases := []string{
		"",
		"no xml",
		"<a><b></a>",
		"<a></a><b></b>",
		"<a>",
	}
	for _, c := range cases {
		_, err := Parse([]byte(c))
		assert.Error(t, err, "input: %q", c)
	}
}

func TestParse_Charset(t *testing.T) {
	enc, err := charmap.ISO8859_1.NewEncoder().String(`<?xml version="1.0" encoding="ISO-8859-1"?><R><Name>Müller</Name></R>`)
	require.NoError(t, err)
	root, err := Parse([]byte(enc))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"Name": "Müller"}, root.Structure())
}

func TestParse_RoundTrip(t *testing.T) {
	in := map[string]interface{}{
		"Item": map[string]interface{}{
			"Title": "Lamp",
			"Tags":  []interface{}{"a", "b"},
			"StartPrice": map[string]interface{}{
				"value": "1.5",
				"attr":  map[string]interface{}{"currencyID": "EUR"},
			},
		},
	}
	root, err := Parse([]byte("<Root>" + Serialize(in) + "</Root>"))
	require.NoError(t, err)
	assert.Equal(t, in, root.Structure())
}

func TestParse_AttrCollision(t *testing.T) {
	a, err := Parse([]byte(`<A id="1"><value>x</value></A>`))
	require.NoError(t, err)
	b, err := Parse([]byte(`<A id="1">x</A>`))
	require.NoError(t, err)
	assert.Equal(t, a.Structure(), b.Structure())
	assert.Equal(t, `<A id="1">x</A>`, Serialize(map[string]interface{}{"A": a.Structure()}))

	// a child named attr wins over the attributes
	c, err := Parse([]byte(`<A id="1"><attr>y</attr></A>`))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"attr": "y"}, c.Structure())
}
