// Package object описывает редактируемый объект игры и управляет набором
// прикреплённых к нему поведений.
package object

import (
	"sort"

	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/compat"
	"github.com/annel0/objectkit/internal/serializer"
	"github.com/annel0/objectkit/internal/variables"
)

// Object описание объекта: имя, тип, переменные и поведения.
//
// Object не потокобезопасен: одновременные изменения одного объекта
// должен упорядочивать вызывающий код.
type Object struct {
	name      string
	typeName  string
	variables *variables.Container
	behaviors map[string]*behavior.Content
}

// New создаёт пустой объект
func New(name string) *Object {
	return &Object{
		name:      name,
		variables: variables.New(),
		behaviors: make(map[string]*behavior.Content),
	}
}

// Copy возвращает глубокую копию объекта вместе с переменными и поведениями
func (o *Object) Copy() *Object {
	out := &Object{
		name:      o.name,
		typeName:  o.typeName,
		variables: o.variables.Clone(),
		behaviors: make(map[string]*behavior.Content, len(o.behaviors)),
	}
	for name, content := range o.behaviors {
		out.behaviors[name] = content.Clone()
	}
	return out
}

func (o *Object) Name() string                    { return o.name }
func (o *Object) SetName(name string)             { o.name = name }
func (o *Object) Type() string                    { return o.typeName }
func (o *Object) SetType(typeName string)         { o.typeName = typeName }
func (o *Object) Variables() *variables.Container { return o.variables }

// AllBehaviorNames возвращает имена всех поведений. Порядок не является
// частью контракта; сейчас имена отсортированы.
func (o *Object) AllBehaviorNames() []string {
	names := make([]string, 0, len(o.behaviors))
	for name := range o.behaviors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BehaviorCount возвращает число поведений
func (o *Object) BehaviorCount() int { return len(o.behaviors) }

// HasBehaviorNamed проверяет наличие поведения с именем name
func (o *Object) HasBehaviorNamed(name string) bool {
	_, exists := o.behaviors[name]
	return exists
}

// Behavior возвращает поведение по имени. Вызывающий код должен сначала
// проверить HasBehaviorNamed; для отсутствующего имени возвращается nil.
func (o *Object) Behavior(name string) *behavior.Content {
	return o.behaviors[name]
}

// LookupBehavior возвращает поведение и флаг его наличия
func (o *Object) LookupBehavior(name string) (*behavior.Content, bool) {
	content, exists := o.behaviors[name]
	return content, exists
}

// RemoveBehavior удаляет поведение; отсутствие поведения не ошибка
func (o *Object) RemoveBehavior(name string) {
	delete(o.behaviors, name)
}

// RenameBehavior переносит поведение под новое имя. Возвращает false и
// ничего не меняет, если старого имени нет или новое уже занято.
// Под новым ключом оказывается тот же экземпляр контента.
func (o *Object) RenameBehavior(oldName, newName string) bool {
	content, exists := o.behaviors[oldName]
	if !exists {
		return false
	}
	if _, taken := o.behaviors[newName]; taken {
		return false
	}

	delete(o.behaviors, oldName)
	content.SetName(newName)
	o.behaviors[newName] = content
	return true
}

// AddNewBehavior создаёт поведение типа typeName с именем name.
//
// Прототип ищется в текущей платформе проекта; если тип неизвестен,
// возвращается nil и объект не меняется. Поведение с тем же именем
// молча заменяется новым.
func (o *Object) AddNewBehavior(project behavior.Project, typeName, name string) *behavior.Content {
	prototype := project.CurrentPlatform().GetBehavior(typeName)
	if prototype == nil {
		return nil
	}

	content := behavior.NewContent(name, typeName)
	prototype.InitializeContent(content.Content())
	o.behaviors[name] = content
	return content
}

// Properties возвращает собственные свойства объекта. У базового
// объекта их нет; типы объектов с настройками описываются расширениями.
func (o *Object) Properties(project behavior.Project) map[string]behavior.PropertyDescriptor {
	return map[string]behavior.PropertyDescriptor{}
}

// UpdateProperty меняет собственное свойство объекта. У базового объекта
// редактируемых свойств нет.
func (o *Object) UpdateProperty(name, value string, project behavior.Project) bool {
	return false
}

// SerializeTo записывает объект в текущем формате
func (o *Object) SerializeTo(el *serializer.Element) {
	el.SetStringAttribute("name", o.name)
	el.SetStringAttribute("type", o.typeName)
	o.variables.SerializeTo(el.AddChild("variables"))

	behaviorsElement := el.AddChild(compat.CollectionTag)
	behaviorsElement.ConsiderAsArrayOf(compat.EntryTag)
	for _, name := range o.AllBehaviorNames() {
		content := o.behaviors[name]
		item := behaviorsElement.AddChild(compat.EntryTag)
		item.SetStringAttribute("type", content.TypeName())
		item.SetStringAttribute("name", content.Name())
		content.SerializeTo(item)
	}
}

// UnserializeFrom читает переменные и поведения объекта, в том числе из
// старых форматов. Набор поведений полностью заменяется. Поведения
// неизвестных типов сохраняются как есть.
//
// Имя и тип объекта читает владелец (проект), так как они нужны ему
// раньше, чтобы создать объект нужного типа.
func (o *Object) UnserializeFrom(project behavior.Project, el *serializer.Element) {
	o.variables.UnserializeFrom(el.GetChild("variables", 0, "Variables"))

	o.behaviors = make(map[string]*behavior.Content)
	for _, entry := range compat.Translate(el) {
		content := behavior.NewContent(entry.Name, entry.TypeName)
		content.UnserializeFrom(entry.Element)
		o.behaviors[entry.Name] = content
	}
}
