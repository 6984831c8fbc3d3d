package domain

type SendMessageCommand struct {
	From string
	To   string
	Text string
	Kind string
}

type UpdateMessageCommand struct {
	ID        string
	Requester string
	To        string
	Text      string
	Kind      string
}

type DeleteMessageCommand struct {
	ID        string
	Requester string
}

// ListMessagesQuery asks for the messages visible to Requester.
// A nil Limit returns the whole visible history.
type ListMessagesQuery struct {
	Requester string
	Limit     *int
}
