package broker

// NATS subjects, one per entity stream.
const (
	UserSubject   = "user_events"
	NoteSubject   = "note_events"
	FolderSubject = "folder_events"
	LayoutSubject = "layout_events"
)

// SubjectForEntity maps an outbox entity to its subject.
func SubjectForEntity(entity string) string {
	switch entity {
	case "user":
		return UserSubject
	case "note":
		return NoteSubject
	case "folder":
		return FolderSubject
	case "layout":
		return LayoutSubject
	}
	return NoteSubject
}
