package compat

import (
	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/serializer"
)

// Upgrade переписывает записи поведений элемента объекта в текущий формат:
// обёртка behaviors, массив элементов behavior, атрибуты type и name.
// Возвращает имя правила, по которому был прочитан исходный документ.
func Upgrade(el *serializer.Element) string {
	entries, rule := TranslateWithRule(el)

	upgraded := make([]*serializer.Element, 0, len(entries))
	for _, entry := range entries {
		content := behavior.NewContent(entry.Name, entry.TypeName)
		content.UnserializeFrom(entry.Element)

		item := serializer.NewElement()
		item.SetStringAttribute("type", content.TypeName())
		item.SetStringAttribute("name", content.Name())
		content.SerializeTo(item)
		upgraded = append(upgraded, item)
	}

	el.RemoveChild(LegacyEntryTag)
	el.RemoveChild(CollectionTag)
	el.RemoveChild(LegacyCollectionTag)

	collection := el.AddChild(CollectionTag).ConsiderAsArrayOf(EntryTag)
	for _, item := range upgraded {
		collection.AppendChild(EntryTag, item)
	}
	return rule
}
