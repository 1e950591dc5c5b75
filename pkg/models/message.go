package models

// Attribute is a typed message attribute, carried verbatim when a message
// is republished.
type Attribute struct {
	DataType    string `json:"data_type"`
	StringValue string `json:"string_value"`
}

// Message represents a message received from a queue
type Message struct {
	ID            string               `json:"id"`
	Body          string               `json:"body"`
	Attributes    map[string]Attribute `json:"attributes"`
	ReceiptHandle string               `json:"-"`
}

// Attribute name constants
const (
	AttrMessageID   = "message-id"
	AttrContentType = "content-type"
	AttrOrigin      = "origin"
	AttrPublishedAt = "published-at"
)

// RepublishOutcome is the per-message result of a republish attempt.
// Exactly one of NewID or Reason is set.
type RepublishOutcome struct {
	Message Message
	NewID   string
	Reason  string
	ok      bool
}

func Sent(msg Message, newID string) RepublishOutcome {
	return RepublishOutcome{Message: msg, NewID: newID, ok: true}
}

func Failed(msg Message, reason string) RepublishOutcome {
	return RepublishOutcome{Message: msg, Reason: reason}
}

// Succeeded reports whether the republish produced a new message identifier.
func (o RepublishOutcome) Succeeded() bool {
	return o.ok
}
