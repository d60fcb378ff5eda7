package variables

import (
	"testing"

	"github.com/annel0/objectkit/internal/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContainerBasics(t *testing.T) {
	c := New()
	c.Set("score", NewNumber(10))
	c.Set("title", NewString("Hero"))
	c.Set("alive", NewBoolean(true))
	c.Set("score", NewNumber(20))

	assert.Equal(t, []string{"score", "title", "alive"}, c.Names())
	v, ok := c.Get("score")
	require.True(t, ok)
	assert.Equal(t, 20.0, v.Number())

	assert.True(t, c.Rename("title", "label"))
	assert.False(t, c.Rename("missing", "x"))
	assert.False(t, c.Rename("label", "score"))
	assert.Equal(t, []string{"score", "label", "alive"}, c.Names())

	c.Remove("score")
	c.Remove("score")
	assert.Equal(t, 2, c.Count())
	assert.False(t, c.Has("score"))
}

func TestCloneIsIndependent(t *testing.T) {
	c := New()
	c.Set("score", NewNumber(1))

	d := c.Clone()
	v, _ := d.Get("score")
	v.SetNumber(5)
	d.Set("extra", NewString("x"))

	orig, _ := c.Get("score")
	assert.Equal(t, 1.0, orig.Number())
	assert.False(t, c.Has("extra"))
}

func TestSerializeRoundTripThroughJSON(t *testing.T) {
	c := New()
	c.Set("score", NewNumber(1.5))
	c.Set("title", NewString("Hero"))
	c.Set("alive", NewBoolean(true))

	el := serializer.NewElement()
	c.SerializeTo(el)

	data, err := serializer.ToJSON(el)
	require.NoError(t, err)
	parsed, err := serializer.FromJSON(data)
	require.NoError(t, err)

	back := New()
	back.UnserializeFrom(parsed)

	require.Equal(t, c.Names(), back.Names())
	for _, name := range c.Names() {
		want, _ := c.Get(name)
		got, _ := back.Get(name)
		assert.Equal(t, want.Type(), got.Type(), name)
		assert.Equal(t, want.String(), got.String(), name)
	}
}

func TestUnserializeLegacyFormat(t *testing.T) {
	el, err := serializer.FromXML([]byte(`<Variables>
  <Variable Name="lives" Value="3"/>
  <Variable Name="nick" Value="bob"/>
</Variables>`))
	require.NoError(t, err)

	c := New()
	c.Set("stale", NewString("x"))
	c.UnserializeFrom(el)

	assert.Equal(t, []string{"lives", "nick"}, c.Names())
	lives, _ := c.Get("lives")
	assert.Equal(t, 3.0, lives.Number())
	nick, _ := c.Get("nick")
	assert.Equal(t, "bob", nick.String())
}

func TestVariableConversions(t *testing.T) {
	v := NewString("1")
	assert.True(t, v.Bool())
	assert.Equal(t, 1.0, v.Number())

	v.SetBool(false)
	assert.Equal(t, TypeBoolean, v.Type())
	assert.Equal(t, "false", v.String())
	assert.Equal(t, 0.0, v.Number())
}
