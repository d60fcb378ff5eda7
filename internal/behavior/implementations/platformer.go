package implementations

import (
	"math"
	"strconv"
	"strings"

	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/serializer"
)

// numberProperty описывает числовую настройку платформера
type numberProperty struct {
	key          string
	label        string
	defaultValue float64
}

var platformerNumbers = []numberProperty{
	{key: "gravity", label: "Gravity", defaultValue: 1000},
	{key: "maxFallingSpeed", label: "Max. falling speed", defaultValue: 700},
	{key: "acceleration", label: "Acceleration", defaultValue: 1500},
	{key: "deceleration", label: "Deceleration", defaultValue: 1500},
	{key: "maxSpeed", label: "Max. speed", defaultValue: 250},
	{key: "jumpSpeed", label: "Jump speed", defaultValue: 600},
}

const canGrabPlatformsKey = "canGrabPlatforms"

// PlatformerObjectBehavior персонаж, который бегает и прыгает по платформам
type PlatformerObjectBehavior struct {
	behavior.Base
}

// NewPlatformerObjectBehavior создаёт прототип платформера
func NewPlatformerObjectBehavior() *PlatformerObjectBehavior {
	return &PlatformerObjectBehavior{}
}

func (b *PlatformerObjectBehavior) Clone() behavior.Behavior {
	c := *b
	return &c
}

func (b *PlatformerObjectBehavior) InitializeContent(content *serializer.Element) {
	for _, n := range platformerNumbers {
		content.SetDoubleAttribute(n.key, n.defaultValue)
	}
	content.SetBoolAttribute(canGrabPlatformsKey, false)
}

func (b *PlatformerObjectBehavior) Properties(content *serializer.Element, project behavior.Project) map[string]behavior.PropertyDescriptor {
	props := make(map[string]behavior.PropertyDescriptor, len(platformerNumbers)+1)
	for _, n := range platformerNumbers {
		v := content.GetDoubleAttribute(n.key, n.defaultValue)
		props[n.key] = behavior.NewProperty(strconv.FormatFloat(v, 'g', -1, 64)).
			SetType(behavior.PropertyNumber).
			SetLabel(n.label)
	}
	props[canGrabPlatformsKey] = behavior.NewProperty(behavior.FormatBool(content.GetBoolAttribute(canGrabPlatformsKey, false))).
		SetType(behavior.PropertyBoolean).
		SetLabel("Can grab platform ledges")
	return props
}

// UpdateProperty принимает только конечные неотрицательные числа
func (b *PlatformerObjectBehavior) UpdateProperty(content *serializer.Element, name, value string, project behavior.Project) bool {
	if name == canGrabPlatformsKey {
		v, ok := behavior.ParseBool(value)
		if !ok {
			return false
		}
		content.SetBoolAttribute(canGrabPlatformsKey, v)
		return true
	}

	for _, n := range platformerNumbers {
		if n.key != name {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
		content.SetDoubleAttribute(n.key, v)
		return true
	}
	return false
}
