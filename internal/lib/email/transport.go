package email

import "context"

// Message is a rendered email ready for a transport.
type Message struct {
	From     string
	FromName string
	To       string
	Subject  string
	Text     string
	HTML     string
}

// Transport delivers a rendered message through a provider.
type Transport interface {
	Send(ctx context.Context, msg *Message) error
	Name() string
}

func (m *Message) fromHeader() string {
	if m.FromName == "" {
		return m.From
	}
	return m.FromName + " <" + m.From + ">"
}
