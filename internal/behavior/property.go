package behavior

import "strings"

// Типы свойств, которые понимает редактор
const (
	PropertyString   = "String"
	PropertyNumber   = "Number"
	PropertyBoolean  = "Boolean"
	PropertyChoice   = "Choice"
	PropertyResource = "Resource"
)

// PropertyDescriptor описывает одно редактируемое свойство для отображения
// в редакторе. Значение всегда хранится строкой.
type PropertyDescriptor struct {
	Value     string   `json:"value"`
	Type      string   `json:"type"`
	Label     string   `json:"label,omitempty"`
	ExtraInfo []string `json:"extraInfo,omitempty"`
	Hidden    bool     `json:"hidden,omitempty"`
}

// NewProperty создаёт строковое свойство с указанным значением
func NewProperty(value string) PropertyDescriptor {
	return PropertyDescriptor{Value: value, Type: PropertyString}
}

func (p PropertyDescriptor) SetValue(value string) PropertyDescriptor {
	p.Value = value
	return p
}

func (p PropertyDescriptor) SetType(t string) PropertyDescriptor {
	p.Type = t
	return p
}

func (p PropertyDescriptor) SetLabel(label string) PropertyDescriptor {
	p.Label = label
	return p
}

// AddExtraInfo добавляет вариант выбора (для свойств типа Choice)
func (p PropertyDescriptor) AddExtraInfo(info string) PropertyDescriptor {
	extra := make([]string, len(p.ExtraInfo), len(p.ExtraInfo)+1)
	copy(extra, p.ExtraInfo)
	p.ExtraInfo = append(extra, info)
	return p
}

func (p PropertyDescriptor) SetHidden(hidden bool) PropertyDescriptor {
	p.Hidden = hidden
	return p
}

// HasChoice проверяет, входит ли значение в список вариантов
func (p PropertyDescriptor) HasChoice(value string) bool {
	for _, c := range p.ExtraInfo {
		if c == value {
			return true
		}
	}
	return false
}

// ParseBool разбирает булево значение в формате редактора: "1"/"0" или "true"/"false".
func ParseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true":
		return true, true
	case "0", "false":
		return false, true
	}
	return false, false
}

// FormatBool форматирует булево значение так, как его отдаёт редактору GetProperties
func FormatBool(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
