package platform

import (
	"sort"
	"sync"

	"github.com/annel0/objectkit/internal/behavior"
)

// Platform реестр прототипов поведений, доступных проекту.
// Платформа владеет прототипами и выдаёт их клоны по имени типа.
type Platform struct {
	name string

	mu        sync.RWMutex
	behaviors map[string]behavior.Behavior
}

// New создаёт пустую платформу
func New(name string) *Platform {
	return &Platform{
		name:      name,
		behaviors: make(map[string]behavior.Behavior),
	}
}

// Name возвращает имя платформы
func (p *Platform) Name() string { return p.name }

// AddBehavior регистрирует прототип под именем типа.
// Имя типа прототипа задаётся здесь и больше не меняется.
func (p *Platform) AddBehavior(typeName string, prototype behavior.Behavior) {
	prototype.SetTypeName(typeName)

	p.mu.Lock()
	p.behaviors[typeName] = prototype
	p.mu.Unlock()
}

// GetBehavior возвращает клон прототипа или nil, если тип не зарегистрирован
func (p *Platform) GetBehavior(typeName string) behavior.Behavior {
	p.mu.RLock()
	prototype, exists := p.behaviors[typeName]
	p.mu.RUnlock()

	if !exists {
		return nil
	}
	return prototype.Clone()
}

// HasBehavior проверяет, зарегистрирован ли тип
func (p *Platform) HasBehavior(typeName string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	_, exists := p.behaviors[typeName]
	return exists
}

// BehaviorTypes возвращает отсортированный список зарегистрированных типов
func (p *Platform) BehaviorTypes() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	types := make([]string, 0, len(p.behaviors))
	for typeName := range p.behaviors {
		types = append(types, typeName)
	}
	sort.Strings(types)
	return types
}
