package variables

import (
	"strconv"

	"github.com/annel0/objectkit/internal/serializer"
)

// Type тип значения переменной
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Variable именованное значение, прикреплённое к объекту
type Variable struct {
	typ Type
	str string
	num float64
	b   bool
}

func NewString(s string) *Variable  { return &Variable{typ: TypeString, str: s} }
func NewNumber(f float64) *Variable { return &Variable{typ: TypeNumber, num: f} }
func NewBoolean(b bool) *Variable   { return &Variable{typ: TypeBoolean, b: b} }

// Type возвращает тип переменной
func (v *Variable) Type() Type { return v.typ }

// String возвращает значение как строку
func (v *Variable) String() string {
	switch v.typ {
	case TypeNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case TypeBoolean:
		return strconv.FormatBool(v.b)
	default:
		return v.str
	}
}

// Number возвращает значение как число (0 для нечисловых строк)
func (v *Variable) Number() float64 {
	switch v.typ {
	case TypeNumber:
		return v.num
	case TypeBoolean:
		if v.b {
			return 1
		}
		return 0
	default:
		f, err := strconv.ParseFloat(v.str, 64)
		if err != nil {
			return 0
		}
		return f
	}
}

// Bool возвращает значение как bool
func (v *Variable) Bool() bool {
	switch v.typ {
	case TypeBoolean:
		return v.b
	case TypeNumber:
		return v.num != 0
	default:
		return v.str == "true" || v.str == "1"
	}
}

func (v *Variable) SetString(s string) {
	v.typ, v.str = TypeString, s
}

func (v *Variable) SetNumber(f float64) {
	v.typ, v.num = TypeNumber, f
}

func (v *Variable) SetBool(b bool) {
	v.typ, v.b = TypeBoolean, b
}

// Clone возвращает копию переменной
func (v *Variable) Clone() *Variable {
	c := *v
	return &c
}

func (v *Variable) serializeTo(el *serializer.Element) {
	el.SetStringAttribute("type", string(v.typ))
	switch v.typ {
	case TypeNumber:
		el.SetDoubleAttribute("value", v.num)
	case TypeBoolean:
		el.SetBoolAttribute("value", v.b)
	default:
		el.SetStringAttribute("value", v.str)
	}
}

// unserializeVariable читает переменную. В старых документах типа нет,
// и он выводится из значения.
func unserializeVariable(el *serializer.Element) *Variable {
	value, hasValue := el.Attribute("value")
	if !hasValue {
		value, hasValue = el.Attribute("Value")
	}

	typ := Type(el.GetStringAttribute("type", ""))
	if typ == "" {
		switch value.Kind() {
		case serializer.KindInt, serializer.KindDouble:
			typ = TypeNumber
		case serializer.KindBool:
			typ = TypeBoolean
		default:
			typ = TypeString
		}
	}

	switch typ {
	case TypeNumber:
		return NewNumber(value.Double())
	case TypeBoolean:
		return NewBoolean(value.Bool())
	default:
		if !hasValue {
			return NewString("")
		}
		return NewString(value.String())
	}
}
