package implementations

import "github.com/annel0/objectkit/internal/platform"

// Имена типов встроенных поведений
const (
	DraggableTypeName  = "DraggableBehavior::Draggable"
	PlatformerTypeName = "PlatformBehavior::PlatformerObjectBehavior"
	AnchorTypeName     = "AnchorBehavior::AnchorBehavior"
)

// RegisterDefaults регистрирует встроенные поведения на платформе
func RegisterDefaults(p *platform.Platform) {
	p.AddBehavior(DraggableTypeName, NewDraggableBehavior())
	p.AddBehavior(PlatformerTypeName, NewPlatformerObjectBehavior())
	p.AddBehavior(AnchorTypeName, NewAnchorBehavior())
}
