package behavior

import (
	"testing"

	"github.com/annel0/objectkit/internal/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseHasNoProperties(t *testing.T) {
	b := New("Ext::Nothing")
	content := serializer.NewElement()

	b.InitializeContent(content)
	assert.True(t, content.IsEmpty())

	props := b.Properties(content, nil)
	require.NotNil(t, props)
	assert.Empty(t, props)
	assert.False(t, b.UpdateProperty(content, "anything", "1", nil))
	assert.True(t, content.IsEmpty())
}

func TestBaseCloneKeepsTypeName(t *testing.T) {
	b := New("Ext::Nothing")
	c := b.Clone()
	assert.Equal(t, "Ext::Nothing", c.TypeName())

	c.SetTypeName("Other")
	assert.Equal(t, "Ext::Nothing", b.TypeName())
}

func TestContentRenameKeepsContent(t *testing.T) {
	c := NewContent("a", "Ext::Thing")
	c.Content().SetIntAttribute("speed", 10)
	before := c.Content()

	c.SetName("b")

	assert.Equal(t, "b", c.Name())
	assert.Equal(t, "Ext::Thing", c.TypeName())
	assert.Same(t, before, c.Content())
	assert.Equal(t, 10, c.Content().GetIntAttribute("speed", 0))
}

func TestContentSerializeRoundTrip(t *testing.T) {
	c := NewContent("Jump", "Ext::Thing")
	c.Content().SetDoubleAttribute("height", 12.5)
	c.Content().AddChild("points").ConsiderAsArrayOf("point").AddChild("point").SetIntAttribute("x", 1)

	entry := serializer.NewElement()
	entry.SetStringAttribute("type", c.TypeName())
	entry.SetStringAttribute("name", c.Name())
	c.SerializeTo(entry)

	assert.Equal(t, "Ext::Thing", entry.GetStringAttribute("type", ""))
	assert.Equal(t, 12.5, entry.GetDoubleAttribute("height", 0))

	back := NewContent("Jump", "Ext::Thing")
	back.UnserializeFrom(entry)

	assert.True(t, c.Content().Equal(back.Content()))
	assert.False(t, back.Content().HasAttribute("type"))
	assert.False(t, back.Content().HasAttribute("name"))
}

func TestContentKeepsCapitalizedKeys(t *testing.T) {
	entry := serializer.NewElement()
	entry.SetStringAttribute("type", "Ext::Thing")
	entry.SetStringAttribute("name", "Label")
	entry.SetStringAttribute("Name", "Player One")
	entry.SetStringAttribute("Type", "bold")

	c := NewContent("Label", "Ext::Thing")
	c.UnserializeFrom(entry)

	assert.Equal(t, []string{"Name", "Type"}, c.Content().AttributeNames())
	assert.Equal(t, "Player One", c.Content().GetStringAttribute("Name", ""))
}

func TestContentSerializeSkipsReservedKeys(t *testing.T) {
	c := NewContent("Label", "Ext::Thing")
	c.Content().SetStringAttribute("name", "inner")
	c.Content().SetStringAttribute("type", "inner-type")
	c.Content().SetStringAttribute("Name", "Player One")

	entry := serializer.NewElement()
	entry.SetStringAttribute("type", c.TypeName())
	entry.SetStringAttribute("name", c.Name())
	c.SerializeTo(entry)

	assert.Equal(t, "Label", entry.GetStringAttribute("name", ""))
	assert.Equal(t, "Ext::Thing", entry.GetStringAttribute("type", ""))
	assert.Equal(t, "Player One", entry.GetStringAttribute("Name", ""))
	assert.True(t, IsReservedKey("name"))
	assert.False(t, IsReservedKey("Name"))
}

func TestContentCloneIsDeep(t *testing.T) {
	c := NewContent("a", "Ext::Thing")
	c.Content().SetIntAttribute("speed", 1)

	d := c.Clone()
	d.Content().SetIntAttribute("speed", 2)
	d.SetName("b")

	assert.Equal(t, 1, c.Content().GetIntAttribute("speed", 0))
	assert.Equal(t, "a", c.Name())
}

func TestPropertyDescriptorBuilders(t *testing.T) {
	p := NewProperty("x").SetType(PropertyChoice).SetLabel("Pick").AddExtraInfo("x").AddExtraInfo("y")
	q := p.AddExtraInfo("z")

	assert.Equal(t, []string{"x", "y"}, p.ExtraInfo)
	assert.Equal(t, []string{"x", "y", "z"}, q.ExtraInfo)
	assert.True(t, p.HasChoice("y"))
	assert.False(t, p.HasChoice("z"))
	assert.Equal(t, "Pick", p.Label)
	assert.True(t, p.SetHidden(true).Hidden)
}

func TestParseBool(t *testing.T) {
	for in, want := range map[string]bool{"1": true, "true": true, "TRUE": true, "0": false, "false": false} {
		got, ok := ParseBool(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseBool("yes")
	assert.False(t, ok)
	assert.Equal(t, "true", FormatBool(true))
}
