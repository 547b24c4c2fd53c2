package event

type Type string

const (
	TypeDocumentsChanged Type = "documents.changed"
	TypeUsersChanged     Type = "users.changed"
	TypeSettingsChanged  Type = "settings.changed"
)

// Event tells open console tabs that a list they show is stale.
type Event struct {
	ID        string `json:"id"`
	Type      Type   `json:"type"`
	Action    string `json:"action"`
	EntityID  string `json:"entity_id,omitempty"`
	Timestamp string `json:"timestamp"`
}

type Bus interface {
	Publish(e Event)
	Subscribe() (<-chan Event, func())
}
