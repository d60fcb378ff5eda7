package editor

// Типы событий редактора
const (
	EventBehaviorAdded           = "BehaviorAdded"
	EventBehaviorRemoved         = "BehaviorRemoved"
	EventBehaviorRenamed         = "BehaviorRenamed"
	EventBehaviorPropertyUpdated = "BehaviorPropertyUpdated"
	EventDocumentImported        = "DocumentImported"
)

// eventSource значение Envelope.Source для событий редактора
const eventSource = "editor"

// BehaviorEvent нагрузка событий об изменении поведений
type BehaviorEvent struct {
	Project  string `json:"project"`
	Object   string `json:"object"`
	Behavior string `json:"behavior"`
	Type     string `json:"type,omitempty"`
	OldName  string `json:"old_name,omitempty"`
	Property string `json:"property,omitempty"`
	Value    string `json:"value,omitempty"`
}

// DocumentEvent нагрузка события об импорте документа
type DocumentEvent struct {
	Project       string `json:"project"`
	Format        string `json:"format"`
	Objects       int    `json:"objects"`
	LegacyObjects int    `json:"legacy_objects"`
}
