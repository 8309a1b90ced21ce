package mailer

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
)

// ErrInvalidRecipient is returned for addresses that do not parse.
var ErrInvalidRecipient = errors.New("invalid recipient address")

// Attachment is a file sent with a message.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Message is one outgoing email. Summary carries short fields providers may use
// in their templates.
type Message struct {
	To          string
	Subject     string
	Text        string
	Summary     map[string]string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// DeliveryError is a provider side failure. Message is the provider's own
// explanation, suitable for showing to the user.
type DeliveryError struct {
	Provider string
	Message  string
	Err      error
}

func (e *DeliveryError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s delivery failed: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("%s delivery failed: %s", e.Provider, e.Message)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// UserMessage returns the text to show the visitor for a delivery error.
func UserMessage(err error) string {
	var de *DeliveryError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	if errors.Is(err, ErrInvalidRecipient) {
		return "Podaj poprawny adres e-mail."
	}
	return "Nie udało się wysłać wyceny. Spróbuj ponownie."
}

// ValidateAddress checks a single recipient and returns its bare address.
func ValidateAddress(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address: %w", ErrInvalidRecipient)
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidRecipient)
	}
	at := strings.LastIndex(addr.Address, "@")
	if at <= 0 || !strings.Contains(addr.Address[at+1:], ".") {
		return "", fmt.Errorf("%q: %w", raw, ErrInvalidRecipient)
	}
	return addr.Address, nil
}

// Log writes messages to the log instead of sending them. Used in development.
type Log struct {
	Logger *zap.Logger
}

func (l Log) Send(_ context.Context, msg Message) error {
	names := make([]string, len(msg.Attachments))
	for i, a := range msg.Attachments {
		names[i] = a.Filename
	}
	l.Logger.Info("email not sent, log provider",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Strings("attachments", names))
	return nil
}
