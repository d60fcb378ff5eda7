package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildObjectElement() *Element {
	root := NewElement()
	root.SetStringAttribute("name", "Hero")
	root.SetStringAttribute("type", "Sprite")
	root.AddChild("variables").ConsiderAsArrayOf("variable")

	behaviors := root.AddChild("behaviors").ConsiderAsArrayOf("behavior")
	b := behaviors.AddChild("behavior")
	b.SetStringAttribute("type", "PlatformBehavior::PlatformerObjectBehavior")
	b.SetStringAttribute("name", "PlatformerObject")
	b.SetDoubleAttribute("gravity", 1000)
	b.SetBoolAttribute("canGrabPlatforms", false)
	b.AddChild("comment").SetValue(StringValue("jumps high"))

	d := behaviors.AddChild("behavior")
	d.SetStringAttribute("type", "DraggableBehavior::Draggable")
	d.SetStringAttribute("name", "Drag")
	return root
}

func TestGetStringAttributeFallbacks(t *testing.T) {
	el := NewElement()
	el.SetStringAttribute("Type", "OldType")
	el.AddChild("name").SetValue(StringValue("FromChild"))

	assert.Equal(t, "OldType", el.GetStringAttribute("type", "", "Type"))
	assert.Equal(t, "FromChild", el.GetStringAttribute("name", ""))
	assert.Equal(t, "fallback", el.GetStringAttribute("missing", "fallback", "AlsoMissing"))
	assert.True(t, el.HasAttribute("name"))
	assert.False(t, el.HasAttribute("type"))
}

func TestTypedAttributes(t *testing.T) {
	el := NewElement()
	el.SetIntAttribute("count", 3)
	el.SetDoubleAttribute("ratio", 0.5)
	el.SetBoolAttribute("enabled", true)
	el.SetStringAttribute("flag", "1")
	el.SetStringAttribute("speed", "250.5")

	assert.Equal(t, 3, el.GetIntAttribute("count", 0))
	assert.Equal(t, 0.5, el.GetDoubleAttribute("ratio", 0))
	assert.True(t, el.GetBoolAttribute("enabled", false))
	assert.True(t, el.GetBoolAttribute("flag", false))
	assert.Equal(t, 250.5, el.GetDoubleAttribute("speed", 0))
	assert.Equal(t, 250, el.GetIntAttribute("speed", 0))
	assert.Equal(t, 7, el.GetIntAttribute("absent", 7))

	el.SetIntAttribute("count", 4)
	assert.Equal(t, []string{"count", "ratio", "enabled", "flag", "speed"}, el.AttributeNames())
	assert.Equal(t, 4, el.GetIntAttribute("count", 0))

	el.RemoveAttribute("count")
	assert.False(t, el.HasAttribute("count"))
}

func TestGetChildCreatesMissingAndUsesLegacyName(t *testing.T) {
	el := NewElement()
	legacy := el.AddChild("Variables")
	legacy.SetStringAttribute("marker", "legacy")

	got := el.GetChild("variables", 0, "Variables")
	assert.Same(t, legacy, got)

	created := el.GetChild("missing", 0)
	require.NotNil(t, created)
	assert.True(t, created.IsEmpty())
	assert.True(t, el.HasChild("missing"))
	assert.True(t, el.HasChild("nothing", "Variables"))
	assert.False(t, el.HasChild("nothing", "alsoNothing"))
}

func TestConsiderAsArrayOfAcceptsLegacyAndAnonymousItems(t *testing.T) {
	el := NewElement()
	el.AddChild("behavior").SetStringAttribute("name", "a")
	el.AddChild("automatism").SetStringAttribute("name", "b")
	el.AddChild("").SetStringAttribute("name", "c")
	el.AddChild("unrelated")

	el.ConsiderAsArrayOf("behavior", "automatism")

	require.Equal(t, 3, el.ChildrenCount(""))
	assert.Equal(t, 3, el.ChildrenCount("behavior"))
	assert.Equal(t, "a", el.ChildAt(0).GetStringAttribute("name", ""))
	assert.Equal(t, "b", el.ChildAt(1).GetStringAttribute("name", ""))
	assert.Equal(t, "c", el.ChildAt(2).GetStringAttribute("name", ""))
	assert.Nil(t, el.ChildAt(3))
	assert.Equal(t, 1, el.ChildrenCount("unrelated"))
}

func TestCloneIsDeep(t *testing.T) {
	src := buildObjectElement()
	dst := src.Clone()
	require.True(t, src.Equal(dst))

	dst.GetChild("behaviors", 0).ChildAt(0).SetDoubleAttribute("gravity", 5)
	assert.Equal(t, 1000.0, src.GetChild("behaviors", 0).ChildAt(0).GetDoubleAttribute("gravity", 0))
	assert.False(t, src.Equal(dst))
}

func TestJSONRoundTrip(t *testing.T) {
	src := buildObjectElement()

	data, err := ToJSON(src)
	require.NoError(t, err)

	parsed, err := FromJSON(data)
	require.NoError(t, err)
	assert.True(t, src.Equal(parsed), "json: %s", data)

	behaviors := parsed.GetChild("behaviors", 0)
	behaviors.ConsiderAsArrayOf("behavior")
	require.Equal(t, 2, behaviors.ChildrenCount(""))
	first := behaviors.ChildAt(0)
	assert.Equal(t, "PlatformerObject", first.GetStringAttribute("name", ""))
	assert.Equal(t, 1000.0, first.GetDoubleAttribute("gravity", 0))
	assert.False(t, first.GetBoolAttribute("canGrabPlatforms", true))
	assert.Equal(t, "jumps high", first.GetStringAttribute("comment", ""))
}

func TestJSONKeepsKeyOrderAndScalarTypes(t *testing.T) {
	parsed, err := FromJSON([]byte(`{"z":1,"a":"x","m":2.5,"b":true,"n":null,"o":{"k":"v"}}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m", "b"}, parsed.AttributeNames())
	v, ok := parsed.Attribute("z")
	require.True(t, ok)
	assert.Equal(t, KindInt, v.Kind())
	v, _ = parsed.Attribute("m")
	assert.Equal(t, KindDouble, v.Kind())
	assert.True(t, parsed.HasChild("n"))
	assert.Equal(t, "v", parsed.GetChild("o", 0).GetStringAttribute("k", ""))

	out, err := ToJSON(parsed)
	require.NoError(t, err)
	assert.Equal(t, `{"z":1,"a":"x","m":2.5,"b":true,"n":{},"o":{"k":"v"}}`, string(out))
}

func TestFromJSONRejectsGarbage(t *testing.T) {
	_, err := FromJSON([]byte(`{"a":`))
	assert.Error(t, err)

	_, err = FromJSON([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)
}

func TestFromXMLLegacyDocument(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<Objet nom="Hero" type="Sprite">
  <Automatism Type="PlatformAutomatism::PlatformerObjectAutomatism" Name="PlatformerObject" gravity="1000"/>
  <Automatism Type="DraggableAutomatism::Draggable" Name="Drag">
    <note>hello</note>
  </Automatism>
</Objet>`

	el, err := FromXML([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Hero", el.GetStringAttribute("name", "", "nom"))
	require.Equal(t, 2, el.ChildrenCount("Automatism"))
	first := el.GetChild("Automatism", 0)
	assert.Equal(t, "PlatformerObject", first.GetStringAttribute("name", "", "Name"))
	assert.Equal(t, 1000.0, first.GetDoubleAttribute("gravity", 0))
	second := el.GetChild("Automatism", 1)
	assert.Equal(t, "hello", second.GetStringAttribute("note", ""))
}

func TestFromXMLDeepNestingWithText(t *testing.T) {
	// текст перед дочерними тегами на каждом уровне вложенности
	doc := `<Project>
  <Objects>
    <Objet nom="Hero">
      <Automatism Type="SomeAutomatism" Name="Some">
        <Points>
          <Point x="1"/>
        </Points>
        <Label>first</Label>
        <Label>second</Label>
      </Automatism>
    </Objet>
  </Objects>
  <Title>Legacy</Title>
</Project>`

	el, err := FromXML([]byte(doc))
	require.NoError(t, err)

	auto := el.GetChild("Objects", 0).GetChild("Objet", 0).GetChild("Automatism", 0)
	assert.Equal(t, "Some", auto.GetStringAttribute("Name", ""))
	assert.Equal(t, 1, auto.GetChild("Points", 0).GetChild("Point", 0).GetIntAttribute("x", 0))
	require.Equal(t, 2, auto.ChildrenCount("Label"))
	assert.Equal(t, "second", auto.GetChild("Label", 1).Value().String())
	assert.Equal(t, "Legacy", el.GetStringAttribute("Title", ""))
}

func TestXMLRoundTrip(t *testing.T) {
	src := buildObjectElement()

	data, err := ToXML(src, "object")
	require.NoError(t, err)

	parsed, err := FromXML(data)
	require.NoError(t, err)

	behaviors := parsed.GetChild("behaviors", 0).ConsiderAsArrayOf("behavior")
	require.Equal(t, 2, behaviors.ChildrenCount(""))
	assert.Equal(t, "Drag", behaviors.ChildAt(1).GetStringAttribute("name", ""))
	assert.Equal(t, 1000.0, behaviors.ChildAt(0).GetDoubleAttribute("gravity", 0))
	assert.Equal(t, "jumps high", behaviors.ChildAt(0).GetStringAttribute("comment", ""))
}

func TestFromXMLErrors(t *testing.T) {
	_, err := FromXML([]byte(""))
	assert.Error(t, err)

	_, err = FromXML([]byte("<a><b></a>"))
	assert.Error(t, err)
}

func TestYAMLRoundTrip(t *testing.T) {
	doc := `
name: Hero
count: 3
ratio: 0.5
enabled: true
behaviors:
  - type: DraggableBehavior::Draggable
    name: Drag
`
	el, err := FromYAML([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Hero", el.GetStringAttribute("name", ""))
	assert.Equal(t, 3, el.GetIntAttribute("count", 0))
	assert.Equal(t, 0.5, el.GetDoubleAttribute("ratio", 0))
	assert.True(t, el.GetBoolAttribute("enabled", false))

	behaviors := el.GetChild("behaviors", 0).ConsiderAsArrayOf("behavior")
	require.Equal(t, 1, behaviors.ChildrenCount(""))
	assert.Equal(t, "Drag", behaviors.ChildAt(0).GetStringAttribute("name", ""))

	out, err := ToYAML(el)
	require.NoError(t, err)
	again, err := FromYAML(out)
	require.NoError(t, err)
	assert.True(t, el.Equal(again), "yaml: %s", out)
}

func TestFormatDispatch(t *testing.T) {
	f, err := ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, FormatYAML, f)

	_, err = ParseFormat("toml")
	assert.Error(t, err)

	assert.Equal(t, FormatXML, FormatFromPath("legacy/game.xml"))
	assert.Equal(t, FormatJSON, FormatFromPath("game"))

	src := buildObjectElement()
	for _, format := range []Format{FormatJSON, FormatYAML} {
		data, err := Encode(src, format)
		require.NoError(t, err)
		back, err := Decode(data, format)
		require.NoError(t, err)
		assert.True(t, src.Equal(back), "format %s", format)
	}
}
