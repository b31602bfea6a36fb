package outlook

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/teemow/outlookmail/internal/logging"
)

// ContactService provides access to the account's sender overrides: the
// per-contact rules that route a sender's mail to the Focused or Other
// section of the inbox.
type ContactService struct {
	account *Account
}

// Overrides returns the contacts with an inference-classification
// override, each with Focused set to the override's routing.
func (s *ContactService) Overrides(ctx context.Context) ([]Contact, error) {
	var list overrideListResource
	err := s.account.do(ctx, "contacts.overrides", http.MethodGet, "/me/inferenceClassification/overrides", nil, &list)
	if err != nil {
		return nil, err
	}

	contacts := make([]Contact, 0, len(list.Value))
	for _, r := range list.Value {
		contacts = append(contacts, toOverrideContact(r))
	}
	return contacts, nil
}

// SetOverride routes all future mail from the contact to the Focused
// (focused=true) or Other (focused=false) inbox section. The returned
// Contact is the stored override.
func (s *ContactService) SetOverride(ctx context.Context, contact Contact, focused bool) (*Contact, error) {
	const op = "contacts.setoverride"

	if contact.Email == "" {
		return nil, validationError(op, "contact email must not be empty")
	}

	classification := classificationOther
	if focused {
		classification = classificationFocused
	}

	payload := overrideResource{
		ClassifyAs: classification,
		SenderEmailAddress: emailAddressResource{
			Name:    contact.Name,
			Address: contact.Email,
		},
	}

	var r overrideResource
	if err := s.account.do(ctx, op, http.MethodPost, "/me/inferenceClassification/overrides", payload, &r); err != nil {
		return nil, err
	}
	s.account.logger.DebugContext(ctx, "override stored",
		logging.Operation(op),
		logging.UserHash(contact.Email),
		slog.Bool("focused", focused),
	)
	stored := toOverrideContact(r)
	return &stored, nil
}
