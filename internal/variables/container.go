package variables

import "github.com/annel0/objectkit/internal/serializer"

// Container хранит переменные объекта в порядке добавления
type Container struct {
	names []string
	vars  map[string]*Variable
}

// New создаёт пустой контейнер
func New() *Container {
	return &Container{vars: make(map[string]*Variable)}
}

// Set добавляет переменную или заменяет существующую, сохраняя её позицию
func (c *Container) Set(name string, v *Variable) *Variable {
	if _, exists := c.vars[name]; !exists {
		c.names = append(c.names, name)
	}
	c.vars[name] = v
	return v
}

// Get возвращает переменную по имени
func (c *Container) Get(name string) (*Variable, bool) {
	v, ok := c.vars[name]
	return v, ok
}

func (c *Container) Has(name string) bool {
	_, ok := c.vars[name]
	return ok
}

// Remove удаляет переменную; отсутствие переменной не ошибка
func (c *Container) Remove(name string) {
	if _, ok := c.vars[name]; !ok {
		return
	}
	delete(c.vars, name)
	for i, n := range c.names {
		if n == name {
			c.names = append(c.names[:i], c.names[i+1:]...)
			break
		}
	}
}

// Rename переименовывает переменную. Возвращает false, если старого имени
// нет или новое уже занято.
func (c *Container) Rename(oldName, newName string) bool {
	v, ok := c.vars[oldName]
	if !ok || c.Has(newName) {
		return false
	}
	delete(c.vars, oldName)
	c.vars[newName] = v
	for i, n := range c.names {
		if n == oldName {
			c.names[i] = newName
			break
		}
	}
	return true
}

func (c *Container) Count() int { return len(c.names) }

// Names возвращает имена переменных в порядке добавления
func (c *Container) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Clone возвращает глубокую копию контейнера
func (c *Container) Clone() *Container {
	out := New()
	for _, name := range c.names {
		out.Set(name, c.vars[name].Clone())
	}
	return out
}

// SerializeTo записывает переменные как массив элементов variable
func (c *Container) SerializeTo(el *serializer.Element) {
	el.ConsiderAsArrayOf("variable")
	for _, name := range c.names {
		item := el.AddChild("variable")
		item.SetStringAttribute("name", name)
		c.vars[name].serializeTo(item)
	}
}

// UnserializeFrom заменяет содержимое контейнера. Понимает и старый
// формат с тегами Variable и атрибутами Name/Value.
func (c *Container) UnserializeFrom(el *serializer.Element) {
	c.names = nil
	c.vars = make(map[string]*Variable)

	el.ConsiderAsArrayOf("variable", "Variable")
	for i := 0; i < el.ChildrenCount(""); i++ {
		item := el.ChildAt(i)
		name := item.GetStringAttribute("name", "", "Name")
		c.Set(name, unserializeVariable(item))
	}
}
