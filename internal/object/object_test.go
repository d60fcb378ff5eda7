package object

import (
	"testing"

	"github.com/annel0/objectkit/internal/behavior"
	"github.com/annel0/objectkit/internal/behavior/implementations"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/serializer"
	"github.com/annel0/objectkit/internal/variables"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProject реализует behavior.Project поверх платформы со встроенными поведениями
type testProject struct {
	platform *platform.Platform
}

func (p *testProject) CurrentPlatform() behavior.Registry { return p.platform }

func newTestProject() *testProject {
	p := platform.New("test")
	implementations.RegisterDefaults(p)
	p.AddBehavior("Ext::Plain", behavior.New(""))
	return &testProject{platform: p}
}

func newHero(t *testing.T, project behavior.Project) *Object {
	t.Helper()
	obj := New("Hero")
	obj.SetType("Sprite")
	obj.Variables().Set("lives", variables.NewNumber(3))

	require.NotNil(t, obj.AddNewBehavior(project, implementations.PlatformerTypeName, "Platformer"))
	require.NotNil(t, obj.AddNewBehavior(project, implementations.DraggableTypeName, "Drag"))
	return obj
}

func TestAddNewBehaviorInitializesContent(t *testing.T) {
	project := newTestProject()
	obj := New("Hero")

	content := obj.AddNewBehavior(project, implementations.PlatformerTypeName, "Platformer")
	require.NotNil(t, content)

	assert.Same(t, content, obj.Behavior("Platformer"))
	assert.Equal(t, "Platformer", content.Name())
	assert.Equal(t, implementations.PlatformerTypeName, content.TypeName())
	assert.Equal(t, 1000.0, content.Content().GetDoubleAttribute("gravity", 0))
	assert.True(t, obj.HasBehaviorNamed("Platformer"))
}

func TestAddNewBehaviorUnknownType(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)
	before := obj.AllBehaviorNames()

	assert.Nil(t, obj.AddNewBehavior(project, "NoSuchType", "x"))
	assert.Equal(t, before, obj.AllBehaviorNames())
	assert.False(t, obj.HasBehaviorNamed("x"))
}

func TestAddNewBehaviorOverwritesExistingName(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)
	old := obj.Behavior("Drag")

	added := obj.AddNewBehavior(project, implementations.AnchorTypeName, "Drag")
	require.NotNil(t, added)

	assert.NotSame(t, old, obj.Behavior("Drag"))
	assert.Same(t, added, obj.Behavior("Drag"))
	assert.Equal(t, implementations.AnchorTypeName, obj.Behavior("Drag").TypeName())
	assert.Equal(t, 2, obj.BehaviorCount())
}

func TestRenameBehavior(t *testing.T) {
	project := newTestProject()
	obj := New("Hero")
	content := obj.AddNewBehavior(project, implementations.DraggableTypeName, "a")
	require.NotNil(t, content)
	content.Content().SetStringAttribute("custom", "kept")
	snapshot := content.Content().Clone()

	require.True(t, obj.RenameBehavior("a", "b"))

	assert.False(t, obj.HasBehaviorNamed("a"))
	assert.True(t, obj.HasBehaviorNamed("b"))
	assert.Same(t, content, obj.Behavior("b"))
	assert.Equal(t, "b", obj.Behavior("b").Name())
	assert.True(t, snapshot.Equal(obj.Behavior("b").Content()))
}

func TestRenameBehaviorRejections(t *testing.T) {
	project := newTestProject()
	obj := New("Hero")
	a := obj.AddNewBehavior(project, implementations.DraggableTypeName, "a")
	b := obj.AddNewBehavior(project, implementations.AnchorTypeName, "b")

	assert.False(t, obj.RenameBehavior("missing", "c"))
	assert.False(t, obj.RenameBehavior("a", "b"))

	assert.Equal(t, []string{"a", "b"}, obj.AllBehaviorNames())
	assert.Same(t, a, obj.Behavior("a"))
	assert.Same(t, b, obj.Behavior("b"))
	assert.Equal(t, "a", a.Name())
	assert.False(t, obj.HasBehaviorNamed("c"))
}

func TestRemoveBehavior(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)

	obj.RemoveBehavior("Drag")
	obj.RemoveBehavior("Drag")
	obj.RemoveBehavior("neverExisted")

	assert.Equal(t, []string{"Platformer"}, obj.AllBehaviorNames())
}

func TestLookupBehavior(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)

	content, ok := obj.LookupBehavior("Drag")
	assert.True(t, ok)
	assert.Equal(t, "Drag", content.Name())

	content, ok = obj.LookupBehavior("nope")
	assert.False(t, ok)
	assert.Nil(t, content)
	assert.Nil(t, obj.Behavior("nope"))
}

func TestSerializeProducesCurrentFormat(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)

	el := serializer.NewElement()
	obj.SerializeTo(el)

	assert.Equal(t, "Hero", el.GetStringAttribute("name", ""))
	assert.Equal(t, "Sprite", el.GetStringAttribute("type", ""))
	assert.True(t, el.HasChild("variables"))

	behaviors := el.GetChild("behaviors", 0)
	require.True(t, behaviors.IsArray())
	assert.Equal(t, "behavior", behaviors.ArrayOf())
	require.Equal(t, 2, behaviors.ChildrenCount("behavior"))

	drag := behaviors.ChildAt(0)
	assert.Equal(t, "Drag", drag.GetStringAttribute("name", ""))
	assert.Equal(t, implementations.DraggableTypeName, drag.GetStringAttribute("type", ""))
	assert.True(t, drag.HasAttribute("checkCollisionMask"))
}

func TestRoundTripThroughEveryFormat(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)
	platformer := obj.Behavior("Platformer")
	prototype := project.CurrentPlatform().GetBehavior(platformer.TypeName())
	require.True(t, prototype.UpdateProperty(platformer.Content(), "jumpSpeed", "720", project))

	for _, format := range []serializer.Format{serializer.FormatJSON, serializer.FormatXML, serializer.FormatYAML} {
		el := serializer.NewElement()
		obj.SerializeTo(el)

		data, err := serializer.Encode(el, format)
		require.NoError(t, err, format)
		parsed, err := serializer.Decode(data, format)
		require.NoError(t, err, format)

		back := New(parsed.GetStringAttribute("name", ""))
		back.SetType(parsed.GetStringAttribute("type", ""))
		back.UnserializeFrom(project, parsed)

		assert.Equal(t, obj.Name(), back.Name(), format)
		assert.Equal(t, obj.Type(), back.Type(), format)
		require.Equal(t, obj.AllBehaviorNames(), back.AllBehaviorNames(), format)
		for _, name := range obj.AllBehaviorNames() {
			want := obj.Behavior(name)
			got := back.Behavior(name)
			assert.Equal(t, want.TypeName(), got.TypeName(), format)
			assert.Equal(t, name, got.Name(), format)

			p := project.CurrentPlatform().GetBehavior(want.TypeName())
			assert.Equal(t, p.Properties(want.Content(), project), p.Properties(got.Content(), project), format)
		}

		lives, ok := back.Variables().Get("lives")
		require.True(t, ok, format)
		assert.Equal(t, 3.0, lives.Number(), format)
	}
}

func TestUnknownTypesSurviveRoundTrip(t *testing.T) {
	project := newTestProject()
	doc := `{
  "name": "Ghost",
  "type": "Sprite",
  "behaviors": [
    {"type": "ThirdParty::Haunting", "name": "Haunt", "scariness": 11, "nested": {"a": "b"}}
  ]
}`
	el, err := serializer.FromJSON([]byte(doc))
	require.NoError(t, err)

	obj := New("Ghost")
	obj.UnserializeFrom(project, el)
	require.True(t, obj.HasBehaviorNamed("Haunt"))
	assert.Equal(t, "ThirdParty::Haunting", obj.Behavior("Haunt").TypeName())

	out := serializer.NewElement()
	obj.SerializeTo(out)
	item := out.GetChild("behaviors", 0).ChildAt(0)
	assert.Equal(t, 11, item.GetIntAttribute("scariness", 0))
	assert.Equal(t, "b", item.GetChild("nested", 0).GetStringAttribute("a", ""))
}

func TestContentKeysDoNotClashWithEntryAttributes(t *testing.T) {
	project := newTestProject()

	obj := New("Hero")
	label := obj.AddNewBehavior(project, "Ext::Plain", "Label")
	require.NotNil(t, label)
	label.Content().SetStringAttribute("Name", "Player One")
	label.Content().SetStringAttribute("name", "inner")

	for _, format := range []serializer.Format{serializer.FormatJSON, serializer.FormatXML, serializer.FormatYAML} {
		el := serializer.NewElement()
		obj.SerializeTo(el)
		data, err := serializer.Encode(el, format)
		require.NoError(t, err, format)
		parsed, err := serializer.Decode(data, format)
		require.NoError(t, err, format)

		back := New("Hero")
		back.UnserializeFrom(project, parsed)

		require.Equal(t, []string{"Label"}, back.AllBehaviorNames(), format)
		got := back.Behavior("Label")
		assert.Equal(t, "Ext::Plain", got.TypeName(), format)
		assert.Equal(t, "Player One", got.Content().GetStringAttribute("Name", ""), format)
		assert.Equal(t, []string{"Name"}, got.Content().AttributeNames(), format)
	}
}

func TestUnserializeLegacyAutomatism(t *testing.T) {
	project := newTestProject()
	el, err := serializer.FromXML([]byte(`<Objet nom="Hero" type="Sprite">
  <Variables>
    <Variable Name="lives" Value="3"/>
  </Variables>
  <Automatism Type="SomeAutomatism" Name="Some" power="9"/>
</Objet>`))
	require.NoError(t, err)

	obj := New("Hero")
	obj.UnserializeFrom(project, el)

	require.True(t, obj.HasBehaviorNamed("Some"))
	assert.Equal(t, "SomeBehavior", obj.Behavior("Some").TypeName())
	assert.Equal(t, 9, obj.Behavior("Some").Content().GetIntAttribute("power", 0))
	assert.Equal(t, []string{"power"}, obj.Behavior("Some").Content().AttributeNames())
	assert.True(t, obj.Variables().Has("lives"))
}

func TestUnserializeReplacesBehaviors(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)

	el, err := serializer.FromJSON([]byte(`{"behaviors":[{"type":"Ext::Plain","name":"Only"}]}`))
	require.NoError(t, err)
	obj.UnserializeFrom(project, el)

	assert.Equal(t, []string{"Only"}, obj.AllBehaviorNames())
}

func TestCopyIsDeep(t *testing.T) {
	project := newTestProject()
	obj := newHero(t, project)

	dup := obj.Copy()
	dup.Behavior("Platformer").Content().SetDoubleAttribute("gravity", 1)
	dup.RemoveBehavior("Drag")
	lives, _ := dup.Variables().Get("lives")
	lives.SetNumber(99)

	assert.Equal(t, 1000.0, obj.Behavior("Platformer").Content().GetDoubleAttribute("gravity", 0))
	assert.True(t, obj.HasBehaviorNamed("Drag"))
	orig, _ := obj.Variables().Get("lives")
	assert.Equal(t, 3.0, orig.Number())
	assert.Equal(t, obj.Type(), dup.Type())
}

func TestReflectionDefaults(t *testing.T) {
	project := newTestProject()
	obj := New("Hero")
	plain := obj.AddNewBehavior(project, "Ext::Plain", "p")
	require.NotNil(t, plain)

	prototype := project.CurrentPlatform().GetBehavior("Ext::Plain")
	assert.Empty(t, prototype.Properties(plain.Content(), project))
	assert.False(t, prototype.UpdateProperty(plain.Content(), "x", "1", project))

	assert.Empty(t, obj.Properties(project))
	assert.False(t, obj.UpdateProperty("x", "1", project))
}
