package tickets

import "iotower.com/console/users"

// Ticket states reported in TicketAbstract.Status
const (
	StateOpen   = "OPEN"
	StateClosed = "CLOSED"
)

// CreationBody opens a ticket. Email and ConfirmationCode are only used by
// anonymous users.
type CreationBody struct {
	Topic            string              `json:"topic" validate:"required"`
	Content          string              `json:"content" validate:"required"`
	Context          []users.CustomField `json:"context,omitempty" validate:"omitempty,dive"`
	Email            string              `json:"email,omitempty" validate:"omitempty,email"`
	TechContext      string              `json:"techContext,omitempty"`
	ConfirmationCode string              `json:"confirmationCode,omitempty"`
	FAQEligible      bool                `json:"faqEligible,omitempty"`
	FAQPublic        bool                `json:"faqPublic,omitempty"`
	LLMContent       string              `json:"llmContent,omitempty"`
}

// CreationResponse carries the ticket id once created, or the confirmation
// code to send back on a public creation.
type CreationResponse struct {
	TicketID         int64  `json:"ticketId,omitempty"`
	ConfirmationCode string `json:"confirmationCode,omitempty"`
}

// Abstract is a row of the ticket list
type Abstract struct {
	ID           int64  `json:"id"`
	Topic        string `json:"topic"`
	CreationMs   int64  `json:"creationMs"`
	Status       string `json:"status"`
	UserPending  bool   `json:"userPending"`
	AdminPending bool   `json:"adminPending"`
	CountItems   int64  `json:"countItems"`
}

// Closed reports whether the ticket is closed
func (a Abstract) Closed() bool {
	return a.Status == StateClosed
}

// Message is one reply in a ticket thread
type Message struct {
	ID         string `json:"id"`
	CreationMs int64  `json:"creationMs"`
	Content    string `json:"content"`
	FromUser   bool   `json:"fromUser"`
}

// Detail is a ticket with its replies
type Detail struct {
	ID        int64     `json:"id"`
	Content   string    `json:"content"`
	Responses []Message `json:"responses"`
}

// MessageBody adds a reply to a ticket. Content may be empty when the reply
// only closes the ticket.
type MessageBody struct {
	ID           int64  `json:"id" validate:"gt=0"`
	Content      string `json:"content" validate:"required_without=CloseTicket"`
	AdminContent string `json:"adminContent,omitempty"`
	CloseTicket  bool   `json:"closeTicket"`
	CloseKB      bool   `json:"closeKb"`
	AuthKey      string `json:"AuthKey,omitempty"`
}
