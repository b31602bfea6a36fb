package outlook

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// pageSize is the remote store's fixed list-page unit. It is not
// client-configurable; it only drives the skip offset for numbered
// pages.
const pageSize = 10

// MessageService provides access to the account's messages across all
// folders.
type MessageService struct {
	account *Account
}

func listPath(base string, page int) string {
	if page > 1 {
		return fmt.Sprintf("%s?$skip=%d", base, (page-1)*pageSize)
	}
	return base
}

// All returns one page of messages across the whole mailbox, in the
// remote store's default order (most-recent-first is typical but
// remote-defined). Page 1 is the first page; pages past the end are
// empty, not an error.
func (s *MessageService) All(ctx context.Context, page int) ([]Message, error) {
	var list messageListResource
	if err := s.account.do(ctx, "messages.all", http.MethodGet, listPath("/me/messages", page), nil, &list); err != nil {
		return nil, err
	}
	return toMessages(list.Value), nil
}

// Get returns a single message by id.
func (s *MessageService) Get(ctx context.Context, id string) (*Message, error) {
	var r messageResource
	path := "/me/messages/" + url.PathEscape(id)
	if err := s.account.do(ctx, "messages.get", http.MethodGet, path, nil, &r); err != nil {
		return nil, err
	}
	msg := toMessage(r)
	return &msg, nil
}

// FromFolder returns one page of the folder's messages, with the same
// pagination contract as All.
func (s *MessageService) FromFolder(ctx context.Context, folder FolderRef, page int) ([]Message, error) {
	var list messageListResource
	base := "/me/mailFolders/" + url.PathEscape(folder.folderSegment()) + "/messages"
	if err := s.account.do(ctx, "messages.fromfolder", http.MethodGet, listPath(base, page), nil, &list); err != nil {
		return nil, err
	}
	return toMessages(list.Value), nil
}

// Attachments returns the full attachments of a message, with their
// bytes decoded from the wire encoding.
func (s *MessageService) Attachments(ctx context.Context, id string) ([]Attachment, error) {
	var list attachmentListResource
	path := "/me/messages/" + url.PathEscape(id) + "/attachments"
	if err := s.account.do(ctx, "messages.attachments", http.MethodGet, path, nil, &list); err != nil {
		return nil, err
	}
	attachments := make([]Attachment, 0, len(list.Value))
	for _, r := range list.Value {
		attachments = append(attachments, toAttachment(r))
	}
	return attachments, nil
}

// List returns a pager over the folder's messages. A nil folder pages
// across the whole mailbox.
func (s *MessageService) List(folder FolderRef) *MessagePager {
	return &MessagePager{svc: s, folder: folder, page: 1}
}

// Send delivers a message. At least one recipient across To, CC and
// BCC is required; the validation failure surfaces before any request
// is made. The remote store does not echo the created message, so a
// successful send returns nothing.
func (s *MessageService) Send(ctx context.Context, msg OutgoingMessage) error {
	const op = "messages.send"

	if len(msg.To)+len(msg.CC)+len(msg.BCC) == 0 {
		return validationError(op, "at least one recipient is required across to, cc and bcc")
	}

	r := messageResource{
		Subject: msg.Subject,
		Body: &itemBodyResource{
			ContentType: "HTML",
			Content:     msg.Body,
		},
		ToRecipients:  contactResources(msg.To),
		CcRecipients:  contactResources(msg.CC),
		BccRecipients: contactResources(msg.BCC),
	}
	if msg.From != nil {
		from := contactResource(*msg.From)
		r.From = &from
	}
	if msg.Importance != "" {
		r.Importance = string(msg.Importance)
	}
	for _, a := range msg.Attachments {
		r.Attachments = append(r.Attachments, attachmentPayload(a))
	}

	payload := struct {
		Message messageResource `json:"message"`
	}{Message: r}

	return s.account.do(ctx, op, http.MethodPost, "/me/sendMail", payload, nil)
}

type commentPayload struct {
	// Comment is always sent, even when empty, to match the remote
	// contract; an empty comment means "no added text".
	Comment string `json:"comment"`
}

// Reply sends a reply to the message's sender. An empty comment adds no
// text.
func (s *MessageService) Reply(ctx context.Context, id, comment string) error {
	path := "/me/messages/" + url.PathEscape(id) + "/reply"
	return s.account.do(ctx, "messages.reply", http.MethodPost, path, commentPayload{Comment: comment}, nil)
}

// ReplyAll sends a reply to the sender and all recipients of the
// message.
func (s *MessageService) ReplyAll(ctx context.Context, id, comment string) error {
	path := "/me/messages/" + url.PathEscape(id) + "/replyAll"
	return s.account.do(ctx, "messages.replyall", http.MethodPost, path, commentPayload{Comment: comment}, nil)
}

// Forward forwards the message to the given recipients.
func (s *MessageService) Forward(ctx context.Context, id string, to []Contact, comment string) error {
	const op = "messages.forward"

	if len(to) == 0 {
		return validationError(op, "at least one recipient is required to forward")
	}

	payload := struct {
		Comment      string              `json:"comment"`
		ToRecipients []recipientResource `json:"toRecipients"`
	}{
		Comment:      comment,
		ToRecipients: contactResources(to),
	}

	path := "/me/messages/" + url.PathEscape(id) + "/forward"
	return s.account.do(ctx, op, http.MethodPost, path, payload, nil)
}

// MoveTo moves the message to the destination folder and returns the
// moved message's fresh snapshot under its new id.
func (s *MessageService) MoveTo(ctx context.Context, id string, destination FolderRef) (*Message, error) {
	return s.relocate(ctx, "messages.move", id, destination, "/move")
}

// CopyTo creates a copy of the message in the destination folder and
// returns the copy.
func (s *MessageService) CopyTo(ctx context.Context, id string, destination FolderRef) (*Message, error) {
	return s.relocate(ctx, "messages.copy", id, destination, "/copy")
}

func (s *MessageService) relocate(ctx context.Context, op, id string, destination FolderRef, action string) (*Message, error) {
	payload := struct {
		DestinationID string `json:"destinationId"`
	}{DestinationID: destination.folderSegment()}

	var r messageResource
	path := "/me/messages/" + url.PathEscape(id) + action
	if err := s.account.do(ctx, op, http.MethodPost, path, payload, &r); err != nil {
		return nil, err
	}
	msg := toMessage(r)
	return &msg, nil
}

// Delete removes the message from the remote store. A second delete of
// the same id surfaces ErrNotFound, which callers may treat as
// "already gone".
func (s *MessageService) Delete(ctx context.Context, id string) error {
	path := "/me/messages/" + url.PathEscape(id)
	return s.account.do(ctx, "messages.delete", http.MethodDelete, path, nil, nil)
}

// SetRead marks the message read or unread.
func (s *MessageService) SetRead(ctx context.Context, id string, read bool) error {
	payload := struct {
		IsRead bool `json:"isRead"`
	}{IsRead: read}

	path := "/me/messages/" + url.PathEscape(id)
	return s.account.do(ctx, "messages.setread", http.MethodPatch, path, payload, nil)
}

// SetFocused moves the message between the Focused and Other sections
// of the inbox.
func (s *MessageService) SetFocused(ctx context.Context, id string, focused bool) error {
	classification := classificationOther
	if focused {
		classification = classificationFocused
	}

	payload := struct {
		InferenceClassification string `json:"inferenceClassification"`
	}{InferenceClassification: classification}

	path := "/me/messages/" + url.PathEscape(id)
	return s.account.do(ctx, "messages.setfocused", http.MethodPatch, path, payload, nil)
}

// SetCategories replaces the message's category labels.
func (s *MessageService) SetCategories(ctx context.Context, id string, categories []string) error {
	if categories == nil {
		categories = []string{}
	}

	payload := struct {
		Categories []string `json:"categories"`
	}{Categories: categories}

	path := "/me/messages/" + url.PathEscape(id)
	return s.account.do(ctx, "messages.setcategories", http.MethodPatch, path, payload, nil)
}
