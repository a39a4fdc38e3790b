package backend

import (
	"encoding/json"
	"strconv"
)

// ConversationID is an opaque server-assigned identifier. The wire format is
// either a JSON string or a JSON number depending on the backend's storage,
// so both are accepted and the numeric form is preserved on the way out.
type ConversationID string

func (id *ConversationID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ConversationID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}

	*id = ConversationID(n.String())
	return nil
}

func (id ConversationID) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}

	return json.Marshal(string(id))
}

type UserIdentity struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

type ConversationSummary struct {
	ID    ConversationID `json:"id"`
	Title string         `json:"title"`
}

type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

const (
	RoleUser = "user"
	RoleBot  = "bot"
)

type Message struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Sources []Source `json:"sources,omitempty"`
}

type AskRequest struct {
	Query          string          `json:"query"`
	ConversationID *ConversationID `json:"conversation_id"`
}

type AskResponse struct {
	Answer         string         `json:"answer"`
	Sources        []Source       `json:"sources"`
	ConversationID ConversationID `json:"conversation_id"`
}
