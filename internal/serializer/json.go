package serializer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// childGroup дети одного имени в порядке первого появления.
// Повторяющиеся имена в JSON и YAML записываются массивом.
type childGroup struct {
	name  string
	items []*Element
}

func groupChildren(e *Element) []childGroup {
	index := make(map[string]int)
	var groups []childGroup
	for _, c := range e.children {
		i, ok := index[c.Name]
		if !ok {
			index[c.Name] = len(groups)
			groups = append(groups, childGroup{name: c.Name, items: []*Element{c.Element}})
			continue
		}
		groups[i].items = append(groups[i].items, c.Element)
	}
	return groups
}

// ToJSON кодирует элемент в компактный JSON с сохранением порядка ключей.
func ToJSON(e *Element) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeJSON(&buf, e); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ToJSONIndent кодирует элемент в JSON с отступами
func ToJSONIndent(e *Element, indent string) ([]byte, error) {
	raw, err := ToJSON(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", indent); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeJSONValue(buf *bytes.Buffer, v Value) error {
	var data []byte
	var err error
	switch v.kind {
	case KindString:
		data, err = json.Marshal(v.s)
	case KindBool:
		data, err = json.Marshal(v.b)
	case KindInt:
		data, err = json.Marshal(v.i)
	case KindDouble:
		data, err = json.Marshal(v.f)
	default:
		data = []byte("null")
	}
	if err != nil {
		return err
	}
	buf.Write(data)
	return nil
}

func writeJSON(buf *bytes.Buffer, e *Element) error {
	if e.IsValueNode() {
		return writeJSONValue(buf, e.value)
	}

	if e.isArray {
		buf.WriteByte('[')
		for i, item := range e.arrayItems() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
		return nil
	}

	buf.WriteByte('{')
	first := true
	writeKey := func(name string) error {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(name)
		if err != nil {
			return err
		}
		buf.Write(key)
		buf.WriteByte(':')
		return nil
	}

	for _, a := range e.attributes {
		if err := writeKey(a.name); err != nil {
			return err
		}
		if err := writeJSONValue(buf, a.value); err != nil {
			return err
		}
	}

	for _, g := range groupChildren(e) {
		if err := writeKey(g.name); err != nil {
			return err
		}
		if len(g.items) == 1 {
			if err := writeJSON(buf, g.items[0]); err != nil {
				return err
			}
			continue
		}
		buf.WriteByte('[')
		for i, item := range g.items {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSON(buf, item); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	}
	buf.WriteByte('}')
	return nil
}

// FromJSON разбирает JSON в дерево элементов. Скалярные поля объектов
// становятся атрибутами, а объекты и массивы дочерними элементами.
func FromJSON(data []byte) (*Element, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	el, err := decodeJSON(dec)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора JSON: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("ошибка разбора JSON: лишние данные после документа")
	}
	return el, nil
}

func decodeJSON(dec *json.Decoder) (*Element, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			el := NewElement()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("ожидался ключ объекта, получено %v", keyTok)
				}
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				if child.IsValueNode() {
					el.SetAttribute(key, child.value)
				} else {
					el.AppendChild(key, child)
				}
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return el, nil
		case '[':
			el := NewElement().ConsiderAsArray()
			for dec.More() {
				child, err := decodeJSON(dec)
				if err != nil {
					return nil, err
				}
				el.AppendChild("", child)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return el, nil
		}
		return nil, fmt.Errorf("неожиданный разделитель %v", t)
	case string:
		return NewValueElement(StringValue(t)), nil
	case bool:
		return NewValueElement(BoolValue(t)), nil
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return NewValueElement(IntValue(int(i))), nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, err
		}
		return NewValueElement(DoubleValue(f)), nil
	case nil:
		return NewElement(), nil
	}
	return nil, fmt.Errorf("неизвестный токен %v", tok)
}
