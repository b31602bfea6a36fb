package outlook

import (
	"encoding/json"
	"regexp"
	"strings"
	"time"
)

// Contact represents someone sending or receiving a message.
type Contact struct {
	// Email is the contact's address. Required.
	Email string

	// Name is the contact's display name, empty when the remote store
	// did not provide one.
	Name string

	// Focused reports the inference-classification override for this
	// sender: true routes their mail to the Focused inbox, false to
	// Other. Nil when no override is known.
	Focused *bool
}

// NewContact creates a Contact from a raw email address.
func NewContact(email string) Contact {
	return Contact{Email: email}
}

// Recipients converts raw email addresses into Contacts, for call sites
// that hold plain strings rather than Contact values.
func Recipients(emails ...string) []Contact {
	contacts := make([]Contact, 0, len(emails))
	for _, email := range emails {
		contacts = append(contacts, Contact{Email: email})
	}
	return contacts
}

// Equal reports whether two contacts refer to the same mailbox. Email
// addresses compare case-insensitively; display names are ignored.
func (c Contact) Equal(other Contact) bool {
	return strings.EqualFold(c.Email, other.Email)
}

func (c Contact) String() string {
	if c.Name == "" {
		return c.Email
	}
	return c.Name + " (" + c.Email + ")"
}

// Attachment is a file attached to a message. Bytes holds the raw
// payload; base64 encoding happens once, when the request body is
// serialized, and the reverse decode happens once when a response is
// parsed.
type Attachment struct {
	// ID is the remote attachment id, empty for attachments composed by
	// the caller.
	ID string

	Name        string
	ContentType string
	Bytes       []byte

	// Size and LastModified are populated only on attachments fetched
	// from the remote store.
	Size         int
	LastModified time.Time
}

// NewAttachment creates an Attachment from raw bytes. The name is
// sanitized to a filesystem-safe form.
func NewAttachment(name string, data []byte) Attachment {
	return Attachment{Name: validFilename(name), Bytes: data}
}

var invalidFilenameChars = regexp.MustCompile(`[^-\w.]`)

// validFilename strips surrounding whitespace, converts interior spaces
// to underscores and removes any character that is not alphanumeric,
// dash, underscore or dot.
func validFilename(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), " ", "_")
	return invalidFilenameChars.ReplaceAllString(name, "")
}

// Importance is the sender-asserted priority of a message.
type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceNormal Importance = "normal"
	ImportanceHigh   Importance = "high"
)

// Folder is a mail folder snapshot. Folders form a tree through
// ParentID, which is a lookup reference only; the tree is navigated by
// re-querying, never materialized client-side.
type Folder struct {
	ID               string
	Name             string
	ParentID         string
	ChildFolderCount int
	UnreadItemCount  int
	TotalItemCount   int
}

// Message is a mail message snapshot. ID is empty for messages composed
// locally and not yet known to the remote store.
type Message struct {
	ID          string
	Subject     string
	Body        string
	BodyPreview string

	Sender *Contact
	To     []Contact
	CC     []Contact
	BCC    []Contact

	Attachments    []Attachment
	HasAttachments bool

	FolderID   string
	IsRead     bool
	IsDraft    bool
	Focused    bool
	Importance Importance
	Categories []string

	Created  time.Time
	Sent     time.Time
	Received time.Time
}

// OutgoingMessage is the input shape for MessageService.Send.
type OutgoingMessage struct {
	Subject string
	Body    string

	// From overrides the sending address for accounts with send-as
	// rights on another mailbox. Nil sends as the account owner.
	From *Contact

	To  []Contact
	CC  []Contact
	BCC []Contact

	Attachments []Attachment
	Importance  Importance
}

// Wire resources. These mirror the remote API's JSON shapes; converters
// below map them to and from the exported entities so unknown or
// missing fields default explicitly rather than leaking through.

type emailAddressResource struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

type recipientResource struct {
	EmailAddress emailAddressResource `json:"emailAddress"`
}

type itemBodyResource struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

type attachmentResource struct {
	ODataType    string     `json:"@odata.type,omitempty"`
	ID           string     `json:"id,omitempty"`
	Name         string     `json:"name"`
	ContentType  string     `json:"contentType,omitempty"`
	Size         int        `json:"size,omitempty"`
	LastModified *time.Time `json:"lastModifiedDateTime,omitempty"`

	// ContentBytes is base64 text on the wire; encoding/json performs
	// the single encode/decode at the boundary.
	ContentBytes []byte `json:"contentBytes"`
}

const fileAttachmentType = "#microsoft.graph.fileAttachment"

type messageResource struct {
	ID                      string               `json:"id,omitempty"`
	Subject                 string               `json:"subject"`
	Body                    *itemBodyResource    `json:"body,omitempty"`
	BodyPreview             string               `json:"bodyPreview,omitempty"`
	Sender                  *recipientResource   `json:"sender,omitempty"`
	From                    *recipientResource   `json:"from,omitempty"`
	ToRecipients            []recipientResource  `json:"toRecipients,omitempty"`
	CcRecipients            []recipientResource  `json:"ccRecipients,omitempty"`
	BccRecipients           []recipientResource  `json:"bccRecipients,omitempty"`
	Attachments             []attachmentResource `json:"attachments,omitempty"`
	ParentFolderID          string               `json:"parentFolderId,omitempty"`
	IsRead                  *bool                `json:"isRead,omitempty"`
	IsDraft                 *bool                `json:"isDraft,omitempty"`
	HasAttachments          bool                 `json:"hasAttachments,omitempty"`
	Importance              string               `json:"importance,omitempty"`
	Categories              []string             `json:"categories,omitempty"`
	InferenceClassification string               `json:"inferenceClassification,omitempty"`
	CreatedDateTime         *time.Time           `json:"createdDateTime,omitempty"`
	SentDateTime            *time.Time           `json:"sentDateTime,omitempty"`
	ReceivedDateTime        *time.Time           `json:"receivedDateTime,omitempty"`
}

type folderResource struct {
	ID               string `json:"id"`
	DisplayName      string `json:"displayName"`
	ParentFolderID   string `json:"parentFolderId,omitempty"`
	ChildFolderCount int    `json:"childFolderCount"`
	UnreadItemCount  int    `json:"unreadItemCount"`
	TotalItemCount   int    `json:"totalItemCount"`
}

type overrideResource struct {
	ID                 string               `json:"id,omitempty"`
	ClassifyAs         string               `json:"classifyAs"`
	SenderEmailAddress emailAddressResource `json:"senderEmailAddress"`
}

type messageListResource struct {
	Value []messageResource `json:"value"`
}

type folderListResource struct {
	Value []folderResource `json:"value"`
}

type attachmentListResource struct {
	Value []attachmentResource `json:"value"`
}

type overrideListResource struct {
	Value []overrideResource `json:"value"`
}

// apiErrorResource is the remote store's error envelope.
type apiErrorResource struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func apiErrorMessage(body []byte) string {
	var envelope apiErrorResource
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Error.Message == "" {
		return envelope.Error.Code
	}
	return envelope.Error.Message
}

func toContact(r recipientResource) Contact {
	return Contact{Email: r.EmailAddress.Address, Name: r.EmailAddress.Name}
}

func toContacts(rs []recipientResource) []Contact {
	if len(rs) == 0 {
		return nil
	}
	contacts := make([]Contact, 0, len(rs))
	for _, r := range rs {
		contacts = append(contacts, toContact(r))
	}
	return contacts
}

func contactResource(c Contact) recipientResource {
	return recipientResource{EmailAddress: emailAddressResource{
		Name:    c.Name,
		Address: c.Email,
	}}
}

func contactResources(contacts []Contact) []recipientResource {
	if len(contacts) == 0 {
		return nil
	}
	rs := make([]recipientResource, 0, len(contacts))
	for _, c := range contacts {
		rs = append(rs, contactResource(c))
	}
	return rs
}

func toAttachment(r attachmentResource) Attachment {
	a := Attachment{
		ID:          r.ID,
		Name:        r.Name,
		ContentType: r.ContentType,
		Bytes:       r.ContentBytes,
		Size:        r.Size,
	}
	if r.LastModified != nil {
		a.LastModified = *r.LastModified
	}
	return a
}

func attachmentPayload(a Attachment) attachmentResource {
	return attachmentResource{
		ODataType:    fileAttachmentType,
		Name:         a.Name,
		ContentType:  a.ContentType,
		ContentBytes: a.Bytes,
	}
}

func toImportance(wire string) Importance {
	switch strings.ToLower(wire) {
	case string(ImportanceLow):
		return ImportanceLow
	case string(ImportanceHigh):
		return ImportanceHigh
	default:
		return ImportanceNormal
	}
}

func toFolder(r folderResource) Folder {
	return Folder{
		ID:               r.ID,
		Name:             r.DisplayName,
		ParentID:         r.ParentFolderID,
		ChildFolderCount: r.ChildFolderCount,
		UnreadItemCount:  r.UnreadItemCount,
		TotalItemCount:   r.TotalItemCount,
	}
}

func toFolders(rs []folderResource) []Folder {
	folders := make([]Folder, 0, len(rs))
	for _, r := range rs {
		folders = append(folders, toFolder(r))
	}
	return folders
}

func toMessage(r messageResource) Message {
	m := Message{
		ID:             r.ID,
		Subject:        r.Subject,
		BodyPreview:    r.BodyPreview,
		To:             toContacts(r.ToRecipients),
		CC:             toContacts(r.CcRecipients),
		BCC:            toContacts(r.BccRecipients),
		FolderID:       r.ParentFolderID,
		HasAttachments: r.HasAttachments,
		Importance:     toImportance(r.Importance),
		Categories:     r.Categories,
		Focused:        strings.EqualFold(r.InferenceClassification, classificationFocused),
	}
	if r.Body != nil {
		m.Body = r.Body.Content
	}
	if r.Sender != nil {
		sender := toContact(*r.Sender)
		m.Sender = &sender
	} else if r.From != nil {
		sender := toContact(*r.From)
		m.Sender = &sender
	}
	if r.IsRead != nil {
		m.IsRead = *r.IsRead
	}
	if r.IsDraft != nil {
		m.IsDraft = *r.IsDraft
	}
	for _, ar := range r.Attachments {
		m.Attachments = append(m.Attachments, toAttachment(ar))
	}
	if r.CreatedDateTime != nil {
		m.Created = *r.CreatedDateTime
	}
	if r.SentDateTime != nil {
		m.Sent = *r.SentDateTime
	}
	if r.ReceivedDateTime != nil {
		m.Received = *r.ReceivedDateTime
	}
	return m
}

func toMessages(rs []messageResource) []Message {
	messages := make([]Message, 0, len(rs))
	for _, r := range rs {
		messages = append(messages, toMessage(r))
	}
	return messages
}

const (
	classificationFocused = "focused"
	classificationOther   = "other"
)

func toOverrideContact(r overrideResource) Contact {
	focused := strings.EqualFold(r.ClassifyAs, classificationFocused)
	return Contact{
		Email:   r.SenderEmailAddress.Address,
		Name:    r.SenderEmailAddress.Name,
		Focused: &focused,
	}
}
