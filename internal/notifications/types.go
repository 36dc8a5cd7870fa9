// Package notifications owns the outbound email path: a queuer that places
// serialized send requests on the outbound queue, and a deliver worker that
// drains it through an SMTP sender, deleting entries only on success.
package notifications

// QueueOutbound is the durable queue carrying serialized SendEmailRequests.
const QueueOutbound = "notifications.outbound"

// Destination lists the recipients of one email.
type Destination struct {
	ToAddresses []string `json:"toAddresses"`
}

// Message is the renderable content of one email.
type Message struct {
	Subject  string `json:"subject"`
	HTMLBody string `json:"htmlBody"`
}

// SendEmailRequest is the wire form of one outbound email, as placed on the
// outbound notifications queue.
type SendEmailRequest struct {
	FromAddress string      `json:"fromAddress"`
	Destination Destination `json:"destination"`
	Message     Message     `json:"message"`
}
