package serializer

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

// defaultXMLItemName имя тега для безымянных элементов массива.
const defaultXMLItemName = "item"

// FromXML разбирает XML-документ и возвращает элемент корневого тега.
// Атрибуты XML становятся строковыми атрибутами, текст становится значением элемента.
// В этом формате хранились старые проекты (теги Automatism, Objets и т.п.).
func FromXML(data []byte) (*Element, error) {
	dec := xml.NewDecoder(bytes.NewReader(data))

	var root *Element
	var stack []*Element
	var text []*strings.Builder

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка разбора XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := NewElement()
			for _, attr := range t.Attr {
				el.SetStringAttribute(attr.Name.Local, attr.Value)
			}
			if len(stack) == 0 {
				if root != nil {
					return nil, fmt.Errorf("ошибка разбора XML: несколько корневых элементов")
				}
				root = el
			} else {
				stack[len(stack)-1].AppendChild(t.Name.Local, el)
			}
			stack = append(stack, el)
			text = append(text, &strings.Builder{})
		case xml.CharData:
			if len(text) > 0 {
				text[len(text)-1].Write(t)
			}
		case xml.EndElement:
			if len(stack) == 0 {
				return nil, fmt.Errorf("ошибка разбора XML: лишний закрывающий тег %s", t.Name.Local)
			}
			el := stack[len(stack)-1]
			if s := strings.TrimSpace(text[len(text)-1].String()); s != "" {
				el.SetValue(StringValue(s))
			}
			stack = stack[:len(stack)-1]
			text = text[:len(text)-1]
		}
	}

	if root == nil {
		return nil, fmt.Errorf("ошибка разбора XML: пустой документ")
	}
	return root, nil
}

// ToXML кодирует элемент в XML с корневым тегом rootName.
func ToXML(e *Element, rootName string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := encodeXML(enc, rootName, e); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeXML(enc *xml.Encoder, name string, e *Element) error {
	start := xml.StartElement{Name: xml.Name{Local: name}}
	for _, a := range e.attributes {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: a.name}, Value: a.value.String()})
	}
	if err := enc.EncodeToken(start); err != nil {
		return err
	}
	if e.value.IsSet() {
		if err := enc.EncodeToken(xml.CharData(e.value.String())); err != nil {
			return err
		}
	}
	for _, c := range e.children {
		childName := c.Name
		if childName == "" || e.isArrayItem(childName) {
			childName = e.arrayOf
		}
		if childName == "" {
			childName = defaultXMLItemName
		}
		if err := encodeXML(enc, childName, c.Element); err != nil {
			return err
		}
	}
	return enc.EncodeToken(start.End())
}
