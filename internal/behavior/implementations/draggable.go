package implementations

import (
	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/serializer"
)

const checkCollisionMaskKey = "checkCollisionMask"

// DraggableBehavior позволяет перетаскивать объект мышью или касанием
type DraggableBehavior struct {
	behavior.Base
}

// NewDraggableBehavior создаёт прототип перетаскивания
func NewDraggableBehavior() *DraggableBehavior {
	return &DraggableBehavior{}
}

func (b *DraggableBehavior) Clone() behavior.Behavior {
	c := *b
	return &c
}

// InitializeContent по умолчанию использует ограничивающий прямоугольник
func (b *DraggableBehavior) InitializeContent(content *serializer.Element) {
	content.SetBoolAttribute(checkCollisionMaskKey, false)
}

func (b *DraggableBehavior) Properties(content *serializer.Element, project behavior.Project) map[string]behavior.PropertyDescriptor {
	return map[string]behavior.PropertyDescriptor{
		checkCollisionMaskKey: behavior.NewProperty(behavior.FormatBool(content.GetBoolAttribute(checkCollisionMaskKey, false))).
			SetType(behavior.PropertyBoolean).
			SetLabel("Use object collision mask instead of bounding box"),
	}
}

func (b *DraggableBehavior) UpdateProperty(content *serializer.Element, name, value string, project behavior.Project) bool {
	if name != checkCollisionMaskKey {
		return false
	}
	v, ok := behavior.ParseBool(value)
	if !ok {
		return false
	}
	content.SetBoolAttribute(checkCollisionMaskKey, v)
	return true
}
