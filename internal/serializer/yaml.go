package serializer

import (
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// FromYAML разбирает YAML-документ в дерево элементов по тем же правилам,
// что и FromJSON.
func FromYAML(data []byte) (*Element, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка разбора YAML: %w", err)
	}
	if doc.Kind == 0 {
		return NewElement(), nil
	}
	node := &doc
	if doc.Kind == yaml.DocumentNode {
		if len(doc.Content) == 0 {
			return NewElement(), nil
		}
		node = doc.Content[0]
	}
	return fromYAMLNode(node)
}

func fromYAMLNode(n *yaml.Node) (*Element, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return fromYAMLNode(n.Alias)
	case yaml.MappingNode:
		el := NewElement()
		for i := 0; i+1 < len(n.Content); i += 2 {
			key := n.Content[i].Value
			child, err := fromYAMLNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			if child.IsValueNode() {
				el.SetAttribute(key, child.value)
			} else {
				el.AppendChild(key, child)
			}
		}
		return el, nil
	case yaml.SequenceNode:
		el := NewElement().ConsiderAsArray()
		for _, item := range n.Content {
			child, err := fromYAMLNode(item)
			if err != nil {
				return nil, err
			}
			el.AppendChild("", child)
		}
		return el, nil
	case yaml.ScalarNode:
		return NewValueElement(yamlScalar(n)), nil
	}
	return nil, fmt.Errorf("неподдерживаемый узел YAML (kind=%d)", n.Kind)
}

func yamlScalar(n *yaml.Node) Value {
	switch n.ShortTag() {
	case "!!int":
		if i, err := strconv.Atoi(n.Value); err == nil {
			return IntValue(i)
		}
	case "!!float":
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return DoubleValue(f)
		}
	case "!!bool":
		if b, err := strconv.ParseBool(n.Value); err == nil {
			return BoolValue(b)
		}
	case "!!null":
		return Value{}
	}
	return StringValue(n.Value)
}

// ToYAML кодирует элемент в YAML с сохранением порядка ключей.
func ToYAML(e *Element) ([]byte, error) {
	return yaml.Marshal(toYAMLNode(e))
}

func yamlValueNode(v Value) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: v.String()}
	switch v.kind {
	case KindString:
		n.Tag = "!!str"
	case KindBool:
		n.Tag = "!!bool"
	case KindInt:
		n.Tag = "!!int"
	case KindDouble:
		n.Tag = "!!float"
	default:
		n.Tag = "!!null"
		n.Value = "null"
	}
	return n
}

func toYAMLNode(e *Element) *yaml.Node {
	if e.IsValueNode() {
		return yamlValueNode(e.value)
	}

	if e.isArray {
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range e.arrayItems() {
			seq.Content = append(seq.Content, toYAMLNode(item))
		}
		return seq
	}

	m := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, a := range e.attributes {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: a.name},
			yamlValueNode(a.value))
	}
	for _, g := range groupChildren(e) {
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: g.name}
		if len(g.items) == 1 {
			m.Content = append(m.Content, key, toYAMLNode(g.items[0]))
			continue
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range g.items {
			seq.Content = append(seq.Content, toYAMLNode(item))
		}
		m.Content = append(m.Content, key, seq)
	}
	return m
}
