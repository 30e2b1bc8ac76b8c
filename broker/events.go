package broker

type EventType string

// Standardized event types in format: <resource>.<action>
const (
	NoteCreated EventType = "note.created"
	NoteUpdated EventType = "note.updated"
	NoteDeleted EventType = "note.deleted"

	FolderCreated EventType = "folder.created"
	FolderUpdated EventType = "folder.updated"
	FolderDeleted EventType = "folder.deleted"

	LayoutUpdated EventType = "layout.updated"

	UserCreated EventType = "user.created"
	UserUpdated EventType = "user.updated"
	UserDeleted EventType = "user.deleted"
)
