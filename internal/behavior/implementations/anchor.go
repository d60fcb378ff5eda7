package implementations

import (
	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/serializer"
)

// Варианты привязки края. В контенте хранится индекс варианта.
var (
	horizontalAnchors = []string{"No anchor", "Window left", "Window right", "Proportional"}
	verticalAnchors   = []string{"No anchor", "Window top", "Window bottom", "Proportional"}
)

type anchorEdge struct {
	key     string
	label   string
	choices []string
}

var anchorEdges = []anchorEdge{
	{key: "leftEdgeAnchor", label: "Left edge anchor", choices: horizontalAnchors},
	{key: "rightEdgeAnchor", label: "Right edge anchor", choices: horizontalAnchors},
	{key: "topEdgeAnchor", label: "Top edge anchor", choices: verticalAnchors},
	{key: "bottomEdgeAnchor", label: "Bottom edge anchor", choices: verticalAnchors},
}

const relativeToOriginalWindowSizeKey = "relativeToOriginalWindowSize"

// AnchorBehavior привязывает края объекта к краям окна
type AnchorBehavior struct {
	behavior.Base
}

// NewAnchorBehavior создаёт прототип привязки
func NewAnchorBehavior() *AnchorBehavior {
	return &AnchorBehavior{}
}

func (b *AnchorBehavior) Clone() behavior.Behavior {
	c := *b
	return &c
}

func (b *AnchorBehavior) InitializeContent(content *serializer.Element) {
	for _, edge := range anchorEdges {
		content.SetIntAttribute(edge.key, 0)
	}
	content.SetBoolAttribute(relativeToOriginalWindowSizeKey, true)
}

func (b *AnchorBehavior) Properties(content *serializer.Element, project behavior.Project) map[string]behavior.PropertyDescriptor {
	props := make(map[string]behavior.PropertyDescriptor, len(anchorEdges)+1)
	for _, edge := range anchorEdges {
		index := content.GetIntAttribute(edge.key, 0)
		if index < 0 || index >= len(edge.choices) {
			index = 0
		}
		prop := behavior.NewProperty(edge.choices[index]).
			SetType(behavior.PropertyChoice).
			SetLabel(edge.label)
		for _, choice := range edge.choices {
			prop = prop.AddExtraInfo(choice)
		}
		props[edge.key] = prop
	}
	props[relativeToOriginalWindowSizeKey] = behavior.NewProperty(behavior.FormatBool(content.GetBoolAttribute(relativeToOriginalWindowSizeKey, true))).
		SetType(behavior.PropertyBoolean).
		SetLabel("Anchor relatively to original window size")
	return props
}

// UpdateProperty принимает для края только название одного из вариантов
func (b *AnchorBehavior) UpdateProperty(content *serializer.Element, name, value string, project behavior.Project) bool {
	if name == relativeToOriginalWindowSizeKey {
		v, ok := behavior.ParseBool(value)
		if !ok {
			return false
		}
		content.SetBoolAttribute(relativeToOriginalWindowSizeKey, v)
		return true
	}

	for _, edge := range anchorEdges {
		if edge.key != name {
			continue
		}
		for i, choice := range edge.choices {
			if choice == value {
				content.SetIntAttribute(edge.key, i)
				return true
			}
		}
		return false
	}
	return false
}
