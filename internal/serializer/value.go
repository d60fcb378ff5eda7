package serializer

import (
	"strconv"
	"strings"
)

// ValueKind определяет тип скалярного значения в дереве документа.
type ValueKind int

const (
	KindNone ValueKind = iota
	KindString
	KindBool
	KindInt
	KindDouble
)

// String возвращает строковое представление типа значения
func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindDouble:
		return "double"
	default:
		return "none"
	}
}

// Value скалярное значение элемента или атрибута.
// Нулевое значение означает «не задано».
type Value struct {
	kind ValueKind
	s    string
	b    bool
	i    int
	f    float64
}

func StringValue(s string) Value  { return Value{kind: KindString, s: s} }
func BoolValue(b bool) Value      { return Value{kind: KindBool, b: b} }
func IntValue(i int) Value        { return Value{kind: KindInt, i: i} }
func DoubleValue(f float64) Value { return Value{kind: KindDouble, f: f} }

// Kind возвращает тип значения
func (v Value) Kind() ValueKind { return v.kind }

// IsSet сообщает, задано ли значение
func (v Value) IsSet() bool { return v.kind != KindNone }

// String приводит значение к строке.
func (v Value) String() string {
	switch v.kind {
	case KindString:
		return v.s
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return strconv.Itoa(v.i)
	case KindDouble:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	default:
		return ""
	}
}

// Bool приводит значение к bool. Строки "true" и "1" считаются истиной.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindString:
		s := strings.TrimSpace(v.s)
		return s == "true" || s == "1"
	case KindInt:
		return v.i != 0
	case KindDouble:
		return v.f != 0
	default:
		return false
	}
}

// Int приводит значение к int. Нечисловые строки дают 0.
func (v Value) Int() int {
	switch v.kind {
	case KindInt:
		return v.i
	case KindDouble:
		return int(v.f)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		s := strings.TrimSpace(v.s)
		if i, err := strconv.Atoi(s); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f)
		}
		return 0
	default:
		return 0
	}
}

// Double приводит значение к float64. Нечисловые строки дают 0.
func (v Value) Double() float64 {
	switch v.kind {
	case KindDouble:
		return v.f
	case KindInt:
		return float64(v.i)
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Equal сравнивает значения с учётом типа
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindString:
		return v.s == o.s
	case KindBool:
		return v.b == o.b
	case KindInt:
		return v.i == o.i
	case KindDouble:
		return v.f == o.f
	default:
		return true
	}
}
