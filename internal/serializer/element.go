package serializer

// Child именованный дочерний элемент.
type Child struct {
	Name    string
	Element *Element
}

type attribute struct {
	name  string
	value Value
}

// Element узел дерева документа: необязательное скалярное значение,
// упорядоченные атрибуты и упорядоченные именованные дочерние элементы.
//
// Элемент может быть объявлен массивом (ConsiderAsArrayOf). Тогда дети с
// именем массива, его устаревшим именем или пустым именем (так приходят
// элементы JSON-массива) считаются элементами массива и доступны по индексу.
//
// Элемент не потокобезопасен.
type Element struct {
	value      Value
	attributes []attribute
	children   []Child

	isArray           bool
	arrayOf           string
	deprecatedArrayOf string
}

// NewElement создаёт пустой элемент
func NewElement() *Element {
	return &Element{}
}

// NewValueElement создаёт элемент со скалярным значением
func NewValueElement(v Value) *Element {
	return &Element{value: v}
}

// SetValue задаёт скалярное значение элемента
func (e *Element) SetValue(v Value) *Element {
	e.value = v
	return e
}

// Value возвращает скалярное значение элемента
func (e *Element) Value() Value {
	return e.value
}

// IsValueNode сообщает, является ли элемент чистым скаляром (без атрибутов и детей).
func (e *Element) IsValueNode() bool {
	return e.value.IsSet() && len(e.attributes) == 0 && len(e.children) == 0 && !e.isArray
}

// SetAttribute задаёт атрибут, заменяя существующий с тем же именем.
func (e *Element) SetAttribute(name string, v Value) *Element {
	for i := range e.attributes {
		if e.attributes[i].name == name {
			e.attributes[i].value = v
			return e
		}
	}
	e.attributes = append(e.attributes, attribute{name: name, value: v})
	return e
}

func (e *Element) SetStringAttribute(name, v string) *Element {
	return e.SetAttribute(name, StringValue(v))
}

func (e *Element) SetBoolAttribute(name string, v bool) *Element {
	return e.SetAttribute(name, BoolValue(v))
}

func (e *Element) SetIntAttribute(name string, v int) *Element {
	return e.SetAttribute(name, IntValue(v))
}

func (e *Element) SetDoubleAttribute(name string, v float64) *Element {
	return e.SetAttribute(name, DoubleValue(v))
}

// Attribute возвращает значение атрибута. Если атрибута нет, используется
// значение одноимённого скалярного дочернего элемента: JSON и YAML не
// различают атрибуты и скалярных детей.
func (e *Element) Attribute(name string) (Value, bool) {
	for _, a := range e.attributes {
		if a.name == name {
			return a.value, true
		}
	}
	for _, c := range e.children {
		if c.Name == name && c.Element.IsValueNode() {
			return c.Element.value, true
		}
	}
	return Value{}, false
}

// lookup ищет атрибут по основному имени, затем по устаревшим.
func (e *Element) lookup(name string, legacy []string) (Value, bool) {
	if v, ok := e.Attribute(name); ok {
		return v, true
	}
	for _, l := range legacy {
		if v, ok := e.Attribute(l); ok {
			return v, true
		}
	}
	return Value{}, false
}

// GetStringAttribute возвращает строковый атрибут или def, если он не найден
// ни под основным, ни под устаревшими именами.
func (e *Element) GetStringAttribute(name, def string, legacy ...string) string {
	if v, ok := e.lookup(name, legacy); ok {
		return v.String()
	}
	return def
}

func (e *Element) GetBoolAttribute(name string, def bool, legacy ...string) bool {
	if v, ok := e.lookup(name, legacy); ok {
		return v.Bool()
	}
	return def
}

func (e *Element) GetIntAttribute(name string, def int, legacy ...string) int {
	if v, ok := e.lookup(name, legacy); ok {
		return v.Int()
	}
	return def
}

func (e *Element) GetDoubleAttribute(name string, def float64, legacy ...string) float64 {
	if v, ok := e.lookup(name, legacy); ok {
		return v.Double()
	}
	return def
}

// HasAttribute проверяет наличие атрибута (или скалярного ребёнка) с именем name
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.Attribute(name)
	return ok
}

// RemoveAttribute удаляет атрибут и одноимённых скалярных детей
func (e *Element) RemoveAttribute(name string) {
	attrs := e.attributes[:0]
	for _, a := range e.attributes {
		if a.name != name {
			attrs = append(attrs, a)
		}
	}
	e.attributes = attrs

	children := e.children[:0]
	for _, c := range e.children {
		if c.Name == name && c.Element.IsValueNode() {
			continue
		}
		children = append(children, c)
	}
	e.children = children
}

// AttributeNames возвращает имена атрибутов в порядке добавления
func (e *Element) AttributeNames() []string {
	names := make([]string, 0, len(e.attributes))
	for _, a := range e.attributes {
		names = append(names, a.name)
	}
	return names
}

// AddChild добавляет новый дочерний элемент и возвращает его
func (e *Element) AddChild(name string) *Element {
	child := NewElement()
	e.children = append(e.children, Child{Name: name, Element: child})
	return child
}

// AppendChild добавляет готовый элемент как дочерний
func (e *Element) AppendChild(name string, child *Element) *Element {
	e.children = append(e.children, Child{Name: name, Element: child})
	return child
}

// isArrayItem проверяет, считается ли ребёнок с именем name элементом массива
func (e *Element) isArrayItem(name string) bool {
	if !e.isArray {
		return false
	}
	if name == "" || name == e.arrayOf {
		return true
	}
	return e.deprecatedArrayOf != "" && name == e.deprecatedArrayOf
}

func (e *Element) arrayItems() []*Element {
	items := make([]*Element, 0, len(e.children))
	for _, c := range e.children {
		if e.isArrayItem(c.Name) {
			items = append(items, c.Element)
		}
	}
	return items
}

func (e *Element) named(name string) []*Element {
	if e.isArray && name != "" && name == e.arrayOf {
		return e.arrayItems()
	}
	var out []*Element
	for _, c := range e.children {
		if c.Name == name {
			out = append(out, c.Element)
		}
	}
	return out
}

// HasChild проверяет наличие ребёнка с основным или одним из устаревших имён
func (e *Element) HasChild(name string, legacy ...string) bool {
	if len(e.named(name)) > 0 {
		return true
	}
	for _, l := range legacy {
		if len(e.named(l)) > 0 {
			return true
		}
	}
	return false
}

// GetChild возвращает index-го ребёнка с именем name. Если такого нет,
// пробуются устаревшие имена. Если ребёнок не найден вовсе, он создаётся
// пустым, чтобы чтение отсутствующих частей документа не требовало проверок.
func (e *Element) GetChild(name string, index int, legacy ...string) *Element {
	if found := e.named(name); index < len(found) {
		return found[index]
	}
	for _, l := range legacy {
		if found := e.named(l); index < len(found) {
			return found[index]
		}
	}
	return e.AddChild(name)
}

// ChildAt возвращает index-й элемент массива (или index-го ребёнка, если
// элемент не объявлен массивом). Вне диапазона возвращает nil.
func (e *Element) ChildAt(index int) *Element {
	if e.isArray {
		items := e.arrayItems()
		if index < 0 || index >= len(items) {
			return nil
		}
		return items[index]
	}
	if index < 0 || index >= len(e.children) {
		return nil
	}
	return e.children[index].Element
}

// ChildrenCount возвращает число детей с именем name. Пустое имя означает
// все элементы массива (или всех детей для обычного элемента).
func (e *Element) ChildrenCount(name string) int {
	if name == "" {
		if e.isArray {
			return len(e.arrayItems())
		}
		return len(e.children)
	}
	return len(e.named(name))
}

// ConsiderAsArrayOf объявляет элемент массивом элементов name.
// Необязательное устаревшее имя элементов тоже принимается при чтении.
func (e *Element) ConsiderAsArrayOf(name string, legacy ...string) *Element {
	e.isArray = true
	e.arrayOf = name
	e.deprecatedArrayOf = ""
	if len(legacy) > 0 {
		e.deprecatedArrayOf = legacy[0]
	}
	return e
}

// ConsiderAsArray объявляет элемент массивом безымянных элементов
func (e *Element) ConsiderAsArray() *Element {
	e.isArray = true
	return e
}

func (e *Element) IsArray() bool   { return e.isArray }
func (e *Element) ArrayOf() string { return e.arrayOf }

// Children возвращает копию списка детей
func (e *Element) Children() []Child {
	out := make([]Child, len(e.children))
	copy(out, e.children)
	return out
}

// RemoveChild удаляет всех детей с именем name
func (e *Element) RemoveChild(name string) {
	children := e.children[:0]
	for _, c := range e.children {
		if c.Name != name {
			children = append(children, c)
		}
	}
	e.children = children
}

// IsEmpty сообщает, что у элемента нет ни значения, ни атрибутов, ни детей
func (e *Element) IsEmpty() bool {
	return !e.value.IsSet() && len(e.attributes) == 0 && len(e.children) == 0
}

// Clone возвращает глубокую копию элемента
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := &Element{
		value:             e.value,
		isArray:           e.isArray,
		arrayOf:           e.arrayOf,
		deprecatedArrayOf: e.deprecatedArrayOf,
	}
	if len(e.attributes) > 0 {
		out.attributes = make([]attribute, len(e.attributes))
		copy(out.attributes, e.attributes)
	}
	if len(e.children) > 0 {
		out.children = make([]Child, len(e.children))
		for i, c := range e.children {
			out.children[i] = Child{Name: c.Name, Element: c.Element.Clone()}
		}
	}
	return out
}

// Equal сравнивает элементы по содержимому. Атрибуты и скалярные дети
// считаются одним множеством ключей без учёта порядка; составные дети
// сравниваются по порядку. Так документ равен самому себе после прохода
// через любой кодек.
func (e *Element) Equal(o *Element) bool {
	if e == nil || o == nil {
		return e == o
	}
	if !e.value.Equal(o.value) && !(e.IsValueNode() && o.IsValueNode() && e.value.String() == o.value.String()) {
		return false
	}

	ea, ec := e.split()
	oa, oc := o.split()
	if len(ea) != len(oa) || len(ec) != len(oc) {
		return false
	}
	for name, v := range ea {
		ov, ok := oa[name]
		if !ok || v.String() != ov.String() {
			return false
		}
	}
	for i := range ec {
		if ec[i].Name != oc[i].Name && !(e.isArrayItem(ec[i].Name) && o.isArrayItem(oc[i].Name)) {
			return false
		}
		if !ec[i].Element.Equal(oc[i].Element) {
			return false
		}
	}
	return true
}

// split делит содержимое на скалярные ключи и составных детей
func (e *Element) split() (map[string]Value, []Child) {
	scalars := make(map[string]Value, len(e.attributes))
	for _, a := range e.attributes {
		scalars[a.name] = a.value
	}
	var composite []Child
	for _, c := range e.children {
		if c.Element.IsValueNode() && !e.isArrayItem(c.Name) {
			scalars[c.Name] = c.Element.value
			continue
		}
		composite = append(composite, c)
	}
	return scalars, composite
}
