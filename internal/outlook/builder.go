package outlook

import "context"

type builderState int

const (
	stateDraft builderState = iota
	stateSent
)

// MessageBuilder composes an outgoing message fluently. A builder
// starts in the Draft state and stays mutable until Send succeeds, at
// which point it becomes Sent and permanently immutable: further
// mutation or resend attempts fail with ErrAlreadySent without
// touching the network. A failed Send leaves the builder in Draft, so
// the caller may adjust it and retry.
//
// Attachment bytes are held raw; base64 encoding happens once, when
// Send serializes the request.
type MessageBuilder struct {
	svc   *MessageService
	state builderState
	err   error
	msg   OutgoingMessage
}

// mutate guards every setter with the state machine: mutations of a
// sent builder latch ErrAlreadySent and leave the draft untouched.
func (b *MessageBuilder) mutate(apply func(*OutgoingMessage)) *MessageBuilder {
	if b.state == stateSent {
		b.err = ErrAlreadySent
		return b
	}
	apply(&b.msg)
	return b
}

// To adds recipients. Use Recipients to build Contacts from raw email
// strings.
func (b *MessageBuilder) To(recipients ...Contact) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.To = append(m.To, recipients...) })
}

// CC adds carbon-copy recipients.
func (b *MessageBuilder) CC(recipients ...Contact) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.CC = append(m.CC, recipients...) })
}

// BCC adds blind-carbon-copy recipients.
func (b *MessageBuilder) BCC(recipients ...Contact) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.BCC = append(m.BCC, recipients...) })
}

// Subject sets the subject line.
func (b *MessageBuilder) Subject(subject string) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.Subject = subject })
}

// Body sets the HTML body.
func (b *MessageBuilder) Body(body string) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.Body = body })
}

// From sets the sending address, for accounts with send-as rights on
// another mailbox.
func (b *MessageBuilder) From(sender Contact) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.From = &sender })
}

// Importance sets the message priority.
func (b *MessageBuilder) Importance(importance Importance) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) { m.Importance = importance })
}

// Attach adds a file attachment from raw bytes. The name is sanitized
// to a filesystem-safe form.
func (b *MessageBuilder) Attach(name string, data []byte) *MessageBuilder {
	return b.mutate(func(m *OutgoingMessage) {
		m.Attachments = append(m.Attachments, NewAttachment(name, data))
	})
}

// Err returns the latched usage error, if a setter was called after the
// message was sent.
func (b *MessageBuilder) Err() error {
	return b.err
}

// Sent reports whether the message has been delivered.
func (b *MessageBuilder) Sent() bool {
	return b.state == stateSent
}

// Send delivers the composed message. On success the builder
// transitions to Sent; on failure it remains a mutable, retryable
// draft.
func (b *MessageBuilder) Send(ctx context.Context) error {
	if b.state == stateSent {
		return &Error{Op: "messages.send", Kind: ErrAlreadySent}
	}
	if b.err != nil {
		return b.err
	}

	if err := b.svc.Send(ctx, b.msg); err != nil {
		return err
	}

	b.state = stateSent
	return nil
}
