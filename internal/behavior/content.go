package behavior

import "github.com/annel0/objectkit/internal/serializer"

// reservedKeys ключи записи поведения, которые принадлежат объекту.
// Контент не может хранить настройки с этими именами: при записи они
// пропускаются. Ключи Type и Name старого формата убирает compat.
var reservedKeys = map[string]struct{}{
	"type": {},
	"name": {},
}

// IsReservedKey сообщает, что ключ записи поведения занят объектом
func IsReservedKey(name string) bool {
	_, reserved := reservedKeys[name]
	return reserved
}

// Content хранит настройки одного поведения, прикреплённого к объекту.
// Содержимое непрозрачно для объекта: его понимает только прототип
// поведения с типом TypeName.
type Content struct {
	name     string
	typeName string
	content  *serializer.Element
}

// NewContent создаёт пустой контент поведения
func NewContent(name, typeName string) *Content {
	return &Content{
		name:     name,
		typeName: typeName,
		content:  serializer.NewElement(),
	}
}

// Name возвращает имя поведения в объекте
func (c *Content) Name() string { return c.name }

// SetName меняет имя. Содержимое при этом не трогается.
func (c *Content) SetName(name string) { c.name = name }

// TypeName возвращает тип поведения
func (c *Content) TypeName() string { return c.typeName }

// Content возвращает изменяемое дерево настроек
func (c *Content) Content() *serializer.Element { return c.content }

// Clone возвращает глубокую копию контента
func (c *Content) Clone() *Content {
	return &Content{
		name:     c.name,
		typeName: c.typeName,
		content:  c.content.Clone(),
	}
}

// SerializeTo записывает настройки прямо в элемент записи поведения,
// рядом с атрибутами type и name, которые пишет объект. Зарезервированные
// ключи контента пропускаются и не затирают атрибуты записи.
func (c *Content) SerializeTo(el *serializer.Element) {
	for _, name := range c.content.AttributeNames() {
		if IsReservedKey(name) {
			continue
		}
		if v, ok := c.content.Attribute(name); ok {
			el.SetAttribute(name, v)
		}
	}
	for _, child := range c.content.Children() {
		if IsReservedKey(child.Name) && child.Element.IsValueNode() {
			continue
		}
		el.AppendChild(child.Name, child.Element.Clone())
	}
}

// UnserializeFrom заменяет настройки содержимым элемента записи,
// кроме ключей type и name.
func (c *Content) UnserializeFrom(el *serializer.Element) {
	content := serializer.NewElement()
	for _, name := range el.AttributeNames() {
		if IsReservedKey(name) {
			continue
		}
		if v, ok := el.Attribute(name); ok {
			content.SetAttribute(name, v)
		}
	}
	for _, child := range el.Children() {
		if IsReservedKey(child.Name) && child.Element.IsValueNode() {
			continue
		}
		content.AppendChild(child.Name, child.Element.Clone())
	}
	c.content = content
}
