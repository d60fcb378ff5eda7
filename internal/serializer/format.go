package serializer

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format формат документа на диске или в сети.
type Format string

const (
	FormatJSON Format = "json"
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// DefaultXMLRoot корневой тег при записи проекта в XML
const DefaultXMLRoot = "Project"

// ParseFormat разбирает имя формата. Пустая строка означает JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("неизвестный формат документа: %q", s)
}

// FormatFromPath определяет формат по расширению файла (по умолчанию JSON)
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return FormatJSON
	}
	return f
}

// Decode разбирает документ в указанном формате
func Decode(data []byte, f Format) (*Element, error) {
	switch f {
	case FormatJSON, "":
		return FromJSON(data)
	case FormatXML:
		return FromXML(data)
	case FormatYAML:
		return FromYAML(data)
	}
	return nil, fmt.Errorf("неизвестный формат документа: %q", f)
}

// Encode кодирует элемент в указанном формате
func Encode(e *Element, f Format) ([]byte, error) {
	switch f {
	case FormatJSON, "":
		return ToJSONIndent(e, "  ")
	case FormatXML:
		return ToXML(e, DefaultXMLRoot)
	case FormatYAML:
		return ToYAML(e)
	}
	return nil, fmt.Errorf("неизвестный формат документа: %q", f)
}

// ContentType возвращает MIME-тип формата
func (f Format) ContentType() string {
	switch f {
	case FormatXML:
		return "application/xml"
	case FormatYAML:
		return "application/yaml"
	default:
		return "application/json"
	}
}
