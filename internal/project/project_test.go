package project

import (
	"testing"

	"github.com/annel0/objectkit/internal/behavior/implementations"
	"github.com/annel0/objectkit/internal/platform"
	"github.com/annel0/objectkit/internal/serializer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProject(name string) *Project {
	p := platform.New("test")
	implementations.RegisterDefaults(p)
	return New(name, p)
}

func TestObjectsKeepInsertionOrder(t *testing.T) {
	p := newProject("Game")
	hero := p.InsertNewObject("Sprite", "Hero")
	p.InsertNewObject("Sprite", "Enemy")
	p.InsertNewObject("Text", "Score")

	assert.Same(t, hero, p.InsertNewObject("Text", "Hero"))
	assert.Equal(t, []string{"Hero", "Enemy", "Score"}, p.ObjectNames())

	p.RemoveObject("Enemy")
	p.RemoveObject("Enemy")
	assert.Equal(t, []string{"Hero", "Score"}, p.ObjectNames())
	assert.False(t, p.HasObjectNamed("Enemy"))
	assert.Nil(t, p.Object("Enemy"))
	assert.Equal(t, 2, p.ObjectsCount())
}

func TestJSONRoundTrip(t *testing.T) {
	p := newProject("Game")
	hero := p.InsertNewObject("Sprite", "Hero")
	require.NotNil(t, hero.AddNewBehavior(p, implementations.PlatformerTypeName, "Platformer"))
	require.NotNil(t, hero.AddNewBehavior(p, implementations.AnchorTypeName, "Anchor"))
	p.InsertNewObject("Text", "Score")

	data, err := p.ToJSON()
	require.NoError(t, err)

	back := newProject("")
	require.NoError(t, back.FromJSON(data))

	assert.Equal(t, "Game", back.Name())
	assert.Equal(t, []string{"Hero", "Score"}, back.ObjectNames())
	assert.Equal(t, "Sprite", back.Object("Hero").Type())
	assert.Equal(t, []string{"Anchor", "Platformer"}, back.Object("Hero").AllBehaviorNames())
	assert.Equal(t, implementations.AnchorTypeName, back.Object("Hero").Behavior("Anchor").TypeName())
	assert.Equal(t, 0, back.Object("Score").BehaviorCount())
}

func TestEncodeDecodeEveryFormat(t *testing.T) {
	p := newProject("Game")
	hero := p.InsertNewObject("Sprite", "Hero")
	require.NotNil(t, hero.AddNewBehavior(p, implementations.DraggableTypeName, "Drag"))

	for _, format := range []serializer.Format{serializer.FormatJSON, serializer.FormatXML, serializer.FormatYAML} {
		data, err := p.Encode(format)
		require.NoError(t, err, format)

		back := newProject("")
		require.NoError(t, back.Decode(data, format), format)
		assert.Equal(t, "Game", back.Name(), format)
		require.True(t, back.HasObjectNamed("Hero"), format)
		assert.True(t, back.Object("Hero").HasBehaviorNamed("Drag"), format)
	}
}

func TestUnserializeLegacyProject(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<Project>
  <Info name="Old game"/>
  <Objets>
    <Objet nom="Hero" type="Sprite">
      <Automatism Type="DraggableAutomatism::Draggable" Name="Drag"/>
    </Objet>
    <Objet nom="Wall" type="Sprite">
      <automatisms>
        <automatism type="PlatformAutomatism::PlatformerObjectAutomatism" name="Platformer"/>
      </automatisms>
    </Objet>
  </Objets>
</Project>`

	p := newProject("")
	require.NoError(t, p.Decode([]byte(doc), serializer.FormatXML))

	assert.Equal(t, "Old game", p.Name())
	assert.Equal(t, []string{"Hero", "Wall"}, p.ObjectNames())
	assert.Equal(t, "DraggableBehavior::Draggable", p.Object("Hero").Behavior("Drag").TypeName())
	assert.Equal(t, implementations.PlatformerTypeName, p.Object("Wall").Behavior("Platformer").TypeName())
}

func TestDecodeErrors(t *testing.T) {
	p := newProject("Game")
	p.InsertNewObject("Sprite", "Hero")

	assert.Error(t, p.FromJSON([]byte(`{"objects": [`)))
	assert.Equal(t, []string{"Hero"}, p.ObjectNames())
}

func TestCurrentPlatform(t *testing.T) {
	p := newProject("Game")
	assert.NotNil(t, p.CurrentPlatform().GetBehavior(implementations.DraggableTypeName))
	assert.Nil(t, p.CurrentPlatform().GetBehavior("Nope"))
}
