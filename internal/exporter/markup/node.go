// Package markup содержит выходное дерево SVG и форматирование чисел.
package markup

import (
	"encoding/xml"
	"fmt"
	"io"
)

// ============================================================
// Node
// ============================================================

type Attr struct {
	Name  string
	Value string
}

// Node - элемент SVG. Атрибуты хранятся в порядке добавления.
type Node struct {
	Name     string
	Attrs    []Attr
	Children []*Node
	Text     string
}

func NewNode(name string) *Node {
	return &Node{Name: name}
}

// Set добавляет атрибут или заменяет существующий.
func (n *Node) Set(name, value string) *Node {
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			n.Attrs[i].Value = value
			return n
		}
	}
	n.Attrs = append(n.Attrs, Attr{Name: name, Value: value})
	return n
}

// Get возвращает значение атрибута.
func (n *Node) Get(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (n *Node) Append(children ...*Node) {
	n.Children = append(n.Children, children...)
}

// Walk обходит дерево в глубину.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// ============================================================
// Encoding
// ============================================================

// Encode пишет дерево в w как XML с заголовком и отступами.
func Encode(w io.Writer, root *Node) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := encodeNode(enc, root); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return fmt.Errorf("encode svg: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func encodeNode(enc *xml.Encoder, n *Node) error {
	start := xml.StartElement{Name: xml.Name{Local: n.Name}}
	for _, a := range n.Attrs {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.Name}, Value: a.Value})
	}

	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if n.Text != "" {
		if err := enc.EncodeToken(xml.CharData(n.Text)); err != nil {
			return err
		}
	}
	for _, c := range n.Children {
		if err := encodeNode(enc, c); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
