// Package project хранит набор объектов игры и платформу с прототипами
// поведений, доступными этим объектам.
package project

import (
	"fmt"

	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/object"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/serializer"
)

// Теги документа проекта; у самых старых версий имена были французскими.
const (
	objectsTag        = "objects"
	legacyObjectsTag  = "Objets"
	objectTag         = "object"
	legacyObjectTag   = "Objet"
	legacyNameAttr    = "nom"
	propertiesTag     = "properties"
	legacyPropertyTag = "Info"
)

// Project проект: имя, платформа и упорядоченный список объектов
type Project struct {
	name     string
	platform *platform.Platform
	objects  []*object.Object
}

// New создаёт пустой проект поверх платформы p
func New(name string, p *platform.Platform) *Project {
	return &Project{name: name, platform: p}
}

func (p *Project) Name() string        { return p.name }
func (p *Project) SetName(name string) { p.name = name }

// Platform возвращает платформу проекта
func (p *Project) Platform() *platform.Platform { return p.platform }

// CurrentPlatform реализует behavior.Project
func (p *Project) CurrentPlatform() behavior.Registry { return p.platform }

// InsertNewObject добавляет в конец списка новый объект. Если объект
// с таким именем уже есть, возвращается существующий.
func (p *Project) InsertNewObject(typeName, name string) *object.Object {
	if existing := p.Object(name); existing != nil {
		return existing
	}
	obj := object.New(name)
	obj.SetType(typeName)
	p.objects = append(p.objects, obj)
	return obj
}

// HasObjectNamed проверяет наличие объекта
func (p *Project) HasObjectNamed(name string) bool {
	return p.Object(name) != nil
}

// Object возвращает объект по имени или nil
func (p *Project) Object(name string) *object.Object {
	for _, obj := range p.objects {
		if obj.Name() == name {
			return obj
		}
	}
	return nil
}

// RemoveObject удаляет объект; отсутствие объекта не ошибка
func (p *Project) RemoveObject(name string) {
	for i, obj := range p.objects {
		if obj.Name() == name {
			p.objects = append(p.objects[:i], p.objects[i+1:]...)
			return
		}
	}
}

// ObjectNames возвращает имена объектов в порядке вставки
func (p *Project) ObjectNames() []string {
	names := make([]string, 0, len(p.objects))
	for _, obj := range p.objects {
		names = append(names, obj.Name())
	}
	return names
}

// ObjectsCount возвращает число объектов
func (p *Project) ObjectsCount() int { return len(p.objects) }

// SerializeTo записывает проект в текущем формате
func (p *Project) SerializeTo(el *serializer.Element) {
	el.AddChild(propertiesTag).SetStringAttribute("name", p.name)

	objects := el.AddChild(objectsTag).ConsiderAsArrayOf(objectTag)
	for _, obj := range p.objects {
		obj.SerializeTo(objects.AddChild(objectTag))
	}
}

// UnserializeFrom заменяет содержимое проекта прочитанным из el.
// Платформа проекта не меняется.
func (p *Project) UnserializeFrom(el *serializer.Element) {
	if el.HasChild(propertiesTag, legacyPropertyTag) {
		props := el.GetChild(propertiesTag, 0, legacyPropertyTag)
		p.name = props.GetStringAttribute("name", p.name, legacyNameAttr)
	}

	p.objects = nil
	for _, item := range ObjectElements(el) {
		name := item.GetStringAttribute("name", "", legacyNameAttr)
		obj := object.New(name)
		obj.SetType(item.GetStringAttribute("type", "", "Type"))
		obj.UnserializeFrom(p, item)
		p.objects = append(p.objects, obj)
	}
}

// ObjectElements возвращает элементы объектов документа проекта
// в любом из поддерживаемых форматов.
func ObjectElements(el *serializer.Element) []*serializer.Element {
	if !el.HasChild(objectsTag, legacyObjectsTag) {
		return nil
	}
	objects := el.GetChild(objectsTag, 0, legacyObjectsTag)
	objects.ConsiderAsArrayOf(objectTag, legacyObjectTag)

	count := objects.ChildrenCount("")
	out := make([]*serializer.Element, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, objects.ChildAt(i))
	}
	return out
}

// Encode кодирует проект в указанном формате
func (p *Project) Encode(format serializer.Format) ([]byte, error) {
	el := serializer.NewElement()
	p.SerializeTo(el)
	data, err := serializer.Encode(el, format)
	if err != nil {
		return nil, fmt.Errorf("ошибка кодирования проекта %q: %w", p.name, err)
	}
	return data, nil
}

// Decode читает проект из документа в указанном формате
func (p *Project) Decode(data []byte, format serializer.Format) error {
	el, err := serializer.Decode(data, format)
	if err != nil {
		return fmt.Errorf("ошибка чтения проекта %q: %w", p.name, err)
	}
	p.UnserializeFrom(el)
	return nil
}

// ToJSON кодирует проект в JSON
func (p *Project) ToJSON() ([]byte, error) {
	return p.Encode(serializer.FormatJSON)
}

// FromJSON читает проект из JSON
func (p *Project) FromJSON(data []byte) error {
	return p.Decode(data, serializer.FormatJSON)
}
