package xmlapi

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"golang.org/x/net/html/charset"
)

// Node is an element of a parsed XML document. Namespaces are dropped.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
}

// Parse parses an XML document and returns the root element. The XML
// declaration and other prolog content are skipped. Non UTF-8 documents are
// decoded according to their declared encoding.
func Parse(data []byte) (*Node, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel

	var root *Node
	var stack []*Node
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("Invalid XML: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			n := &Node{Name: t.Name.Local}
			for _, a := range t.Attr {
				// namespace declarations
				if a.Name.Space == "xmlns" || (a.Name.Space == "" && a.Name.Local == "xmlns") {
					continue
				}
				n.Attrs = append(n.Attrs, Attr{Name: a.Name.Local, Value: a.Value})
			}
			if len(stack) > 0 {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, n)
			} else {
				if root != nil {
					return nil, errors.New("Invalid XML: multiple root elements")
				}
				root = n
			}
			stack = append(stack, n)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				top.Text += string(t)
			}
		}
	}
	if root == nil {
		return nil, errors.New("Invalid XML: no root element")
	}
	return root, nil
}

// Structure converts the element into nested maps, slices and strings:
//
//   - an element without children becomes its text,
//   - an element with children becomes a map from child name to converted
//     child, repeated children become a slice,
//   - attributes are stored as map under the key "attr". A text only element
//     with attributes becomes {"value": text, "attr": {...}}, the shape which
//     M renders as attributed element.
//
// The "attr" key is shared with child elements: <A id="1"><value>x</value></A>
// and <A id="1">x</A> convert to the same map, which serializes as the
// attributed form. An attribute map never replaces a child named attr. Text
// between child elements is dropped.
func (n *Node) Structure() interface{} {
	if len(n.Children) == 0 {
		if len(n.Attrs) == 0 {
			return n.Text
		}
		return map[string]interface{}{
			"value": n.Text,
			"attr":  n.attrMap(),
		}
	}
	m := make(map[string]interface{}, len(n.Children))
	for _, c := range n.Children {
		v := c.Structure()
		prev, ok := m[c.Name]
		if !ok {
			m[c.Name] = v
			continue
		}
		// converted children are never slices, so a slice means repetition
		if l, ok := prev.([]interface{}); ok {
			m[c.Name] = append(l, v)
		} else {
			m[c.Name] = []interface{}{prev, v}
		}
	}
	if len(n.Attrs) > 0 {
		if _, ok := m["attr"]; !ok {
			m["attr"] = n.attrMap()
		}
	}
	return m
}

func (n *Node) attrMap() map[string]interface{} {
	am := make(map[string]interface{}, len(n.Attrs))
	for _, a := range n.Attrs {
		am[a.Name] = a.Value
	}
	return am
}
