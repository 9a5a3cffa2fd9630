package common

// EmailSender delivers transactional mail such as order confirmations. The
// worker depends only on this contract; actual delivery is a deployment
// concern.
type EmailSender interface {
	Send(to, subject, html string) error
}

// Email is one captured message.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// InMemoryEmail collects sent messages for test assertions.
type InMemoryEmail struct {
	Outbox []Email
}

// Send appends the message to the outbox.
func (m *InMemoryEmail) Send(to, subject, html string) error {
	if m == nil {
		return nil
	}
	m.Outbox = append(m.Outbox, Email{To: to, Subject: subject, HTML: html})
	return nil
}

// NopEmailSender discards every message. Used where no mail transport is
// configured.
type NopEmailSender struct{}

func (NopEmailSender) Send(string, string, string) error { return nil }
