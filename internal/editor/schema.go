package editor

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/annel0/objectkit/internal/behavior"
)

// Choice вариант значения для свойства типа choice
type Choice struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SchemaField описывает поле формы редактирования свойства.
// Value уже приведено к типу поля: bool, float64 или string.
type SchemaField struct {
	Name      string      `json:"name"`
	ValueType string      `json:"value_type"`
	Label     string      `json:"label"`
	Choices   []Choice    `json:"choices,omitempty"`
	Value     interface{} `json:"value"`
}

// PropertiesToSchema строит поля формы по описаниям свойств.
// Скрытые свойства в форму не попадают; поля отсортированы по имени.
func PropertiesToSchema(properties map[string]behavior.PropertyDescriptor) []SchemaField {
	names := make([]string, 0, len(properties))
	for name, p := range properties {
		if !p.Hidden {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	fields := make([]SchemaField, 0, len(names))
	for _, name := range names {
		p := properties[name]
		valueType := strings.ToLower(p.Type)

		field := SchemaField{
			Name:      name,
			ValueType: valueType,
			Label:     p.Label,
			Value:     castValue(valueType, p.Value),
		}
		if field.Label == "" {
			field.Label = labelFromName(name)
		}
		if valueType == "choice" {
			field.Choices = make([]Choice, 0, len(p.ExtraInfo))
			for _, v := range p.ExtraInfo {
				field.Choices = append(field.Choices, Choice{Value: v, Label: v})
			}
		}
		fields = append(fields, field)
	}
	return fields
}

// castValue приводит строковое значение свойства к типу поля.
// Нечисловая строка у поля number даёт nil.
func castValue(valueType, raw string) interface{} {
	switch valueType {
	case "boolean":
		return raw == "true"
	case "number":
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil
		}
		return f
	}
	return raw
}

// labelFromName делает подпись из имени свойства: первая буква
// заглавная, перед остальными заглавными латинскими буквами пробел.
// jumpSpeed -> "Jump Speed".
func labelFromName(name string) string {
	if name == "" {
		return ""
	}
	runes := []rune(name)

	var b strings.Builder
	b.WriteString(strings.ToUpper(string(runes[0])))
	for i, r := range runes[1:] {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// EncodeValue переводит значение из формы в строку свойства:
// bool записывается как "1"/"0", остальное как текст.
func EncodeValue(v interface{}) string {
	switch value := v.(type) {
	case bool:
		if value {
			return "1"
		}
		return "0"
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
