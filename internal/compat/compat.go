// Package compat переводит старые форматы записи поведений объекта
// в текущий. Применяется только при чтении документа.
//
// Формат менялся дважды: сначала поведения назывались «автоматизмами»
// и хранились повторяющимися тегами Automatism прямо в объекте, затем
// появилась обёртка behaviors (ранее automatisms) с массивом элементов
// behavior (ранее automatism). Оба варианта должны читаться всегда.
package compat

import (
	"strings"

	"github.com/annel0/objectkit/internal/serializer"
)

// Теги и токены старых форматов
const (
	LegacyEntryTag      = "Automatism"
	CollectionTag       = "behaviors"
	LegacyCollectionTag = "automatisms"
	EntryTag            = "behavior"
	LegacyEntryItemTag  = "automatism"

	RuleLegacyAutomatism = "legacy-automatism"
	RuleBehaviorsArray   = "behaviors-array"

	legacyTypeToken  = "Automatism"
	currentTypeToken = "Behavior"
)

// Entry одна запись поведения, приведённая к текущим именам
type Entry struct {
	TypeName string
	Name     string
	// Element исходный элемент записи; из него читается контент.
	Element *serializer.Element
}

// Rule правило чтения одного поколения формата
type Rule interface {
	// Name возвращает имя правила для логов и тестов.
	Name() string
	// Match сообщает, написан ли документ в формате этого правила.
	Match(el *serializer.Element) bool
	// Entries извлекает записи поведений.
	Entries(el *serializer.Element) []Entry
}

var rules = []Rule{
	legacyAutomatismRule{},
	behaviorsArrayRule{},
}

// Rules возвращает правила в порядке применения
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Translate применяет первое подходящее правило к элементу объекта.
// Наличие самого старого тега исключает чтение нового формата.
func Translate(el *serializer.Element) []Entry {
	entries, _ := TranslateWithRule(el)
	return entries
}

// TranslateWithRule работает как Translate и дополнительно возвращает
// имя сработавшего правила.
func TranslateWithRule(el *serializer.Element) ([]Entry, string) {
	for _, r := range rules {
		if r.Match(el) {
			return r.Entries(el), r.Name()
		}
	}
	return nil, ""
}

// IsLegacy сообщает, записаны ли поведения элемента в одном из старых форматов
func IsLegacy(el *serializer.Element) bool {
	if el.HasChild(LegacyEntryTag) {
		return true
	}
	return !el.HasChild(CollectionTag) && el.HasChild(LegacyCollectionTag)
}

// translateType заменяет старый токен семейства поведений на текущий.
// Это буквальная замена подстроки, а не всего значения.
func translateType(typeName string) string {
	return strings.ReplaceAll(typeName, legacyTypeToken, currentTypeToken)
}

// legacyAutomatismRule читает повторяющиеся теги Automatism (GD <= 3.3)
type legacyAutomatismRule struct{}

func (legacyAutomatismRule) Name() string { return RuleLegacyAutomatism }

func (legacyAutomatismRule) Match(el *serializer.Element) bool {
	return el.HasChild(LegacyEntryTag)
}

func (legacyAutomatismRule) Entries(el *serializer.Element) []Entry {
	count := el.ChildrenCount(LegacyEntryTag)
	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		item := el.GetChild(LegacyEntryTag, i)
		// Type и Name старого формата описывают запись, а не настройки.
		content := item.Clone()
		content.RemoveAttribute("Type")
		content.RemoveAttribute("Name")
		entries = append(entries, Entry{
			TypeName: translateType(item.GetStringAttribute("type", "", "Type")),
			Name:     item.GetStringAttribute("name", "", "Name"),
			Element:  content,
		})
	}
	return entries
}

// behaviorsArrayRule читает обёртку behaviors/automatisms с массивом записей.
// Подходит к любому документу: отсутствие обёртки даёт пустой список.
type behaviorsArrayRule struct{}

func (behaviorsArrayRule) Name() string { return RuleBehaviorsArray }

func (behaviorsArrayRule) Match(el *serializer.Element) bool { return true }

func (behaviorsArrayRule) Entries(el *serializer.Element) []Entry {
	if !el.HasChild(CollectionTag, LegacyCollectionTag) {
		return []Entry{}
	}

	collection := el.GetChild(CollectionTag, 0, LegacyCollectionTag)
	collection.ConsiderAsArrayOf(EntryTag, LegacyEntryItemTag)

	count := collection.ChildrenCount("")
	entries := make([]Entry, 0, count)
	for i := 0; i < count; i++ {
		item := collection.ChildAt(i)
		entries = append(entries, Entry{
			// GD <= 4 ещё записывал типы с токеном Automatism.
			TypeName: translateType(item.GetStringAttribute("type", "")),
			Name:     item.GetStringAttribute("name", ""),
			Element:  item,
		})
	}
	return entries
}
