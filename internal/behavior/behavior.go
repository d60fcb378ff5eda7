package behavior

import "github.com/annel0/objectkit/internal/serializer"

// Behavior определяет прототип поведения, которое можно прикрепить к объекту.
//
// Прототип не хранит данных конкретного объекта: все настройки экземпляра
// лежат в Content, а прототип лишь заполняет их значениями по умолчанию и
// позволяет редактору читать и менять их, не зная внутренней схемы.
// Прототипы принадлежат реестру (Registry) и только заимствуются объектом.
type Behavior interface {
	// Clone возвращает новый прототип того же типа.
	// Реестр хранит прототипы полиморфно и выдаёт клоны.
	Clone() Behavior

	// TypeName возвращает имя типа поведения.
	TypeName() string

	// SetTypeName задаёт имя типа. Вызывается только реестром.
	SetTypeName(typeName string)

	// InitializeContent заполняет свежесозданный контент значениями по умолчанию.
	InitializeContent(content *serializer.Element)

	// Properties возвращает редактируемые свойства контента, ключ: имя свойства.
	Properties(content *serializer.Element, project Project) map[string]PropertyDescriptor

	// UpdateProperty применяет одно изменение к контенту.
	// Возвращает false и ничего не меняет, если имя или значение недопустимы.
	UpdateProperty(content *serializer.Element, name, value string, project Project) bool
}

// Registry разрешает имя типа поведения в прототип.
type Registry interface {
	// GetBehavior возвращает прототип для типа или nil, если тип неизвестен.
	GetBehavior(typeName string) Behavior
}

// Project контекст, в котором работают поведения: текущая платформа
// с реестром прототипов.
type Project interface {
	CurrentPlatform() Registry
}

// Base реализует Behavior без редактируемых свойств.
// Конкретные поведения встраивают Base и переопределяют нужные методы,
// в том числе Clone, чтобы клон сохранял конкретный тип.
type Base struct {
	typeName string
}

// New создаёт базовый прототип указанного типа
func New(typeName string) *Base {
	return &Base{typeName: typeName}
}

func (b *Base) Clone() Behavior {
	c := *b
	return &c
}

func (b *Base) TypeName() string            { return b.typeName }
func (b *Base) SetTypeName(typeName string) { b.typeName = typeName }

// InitializeContent ничего не делает: у базового поведения нет настроек.
func (b *Base) InitializeContent(content *serializer.Element) {}

// Properties возвращает пустую карту свойств.
func (b *Base) Properties(content *serializer.Element, project Project) map[string]PropertyDescriptor {
	return map[string]PropertyDescriptor{}
}

// UpdateProperty всегда возвращает false.
func (b *Base) UpdateProperty(content *serializer.Element, name, value string, project Project) bool {
	return false
}
