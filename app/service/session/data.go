package session

import "coursechat/app/client/backend"

// ActiveKind enumerates what the UI is currently pointed at.
type ActiveKind int

const (
	// ActiveNone: a fresh view with no server-side conversation yet.
	ActiveNone ActiveKind = iota
	// ActivePendingCreation: the first message of a brand-new conversation is
	// in flight and the server-assigned id has not arrived yet.
	ActivePendingCreation
	// ActiveExisting: the view shows a known server-side conversation.
	ActiveExisting
)

type ActiveState struct {
	Kind ActiveKind
	ID   backend.ConversationID
}
