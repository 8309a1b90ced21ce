package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Simplici0/posadzki/internal/calculator"
	"github.com/Simplici0/posadzki/internal/mailer"
)

// Channel is how a quote left the calculator.
type Channel string

const (
	ChannelPDF   Channel = "pdf"
	ChannelXLSX  Channel = "xlsx"
	ChannelEmail Channel = "email"
)

// ErrEmailDisabled is returned for email exports when no sender is configured.
var ErrEmailDisabled = errors.New("email delivery is not configured")

// Lead is an exported quote as stored for the contractor.
type Lead struct {
	Document Document
	Channel  Channel
	Email    string
}

// LeadStore persists exported quotes.
type LeadStore interface {
	SaveLead(ctx context.Context, lead Lead) error
}

// Notifier tells the contractor about a new export.
type Notifier interface {
	QuoteExported(ctx context.Context, lead Lead) error
}

// File is a rendered export ready for download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the outcome of a successful export.
type Result struct {
	Document Document
	File     File
}

// Exporter renders, delivers and records quotes. Store and notifier are
// optional.
type Exporter struct {
	company  Company
	sender   mailer.Sender
	store    LeadStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewExporter(company Company, sender mailer.Sender, store LeadStore, notifier Notifier, logger *zap.Logger) *Exporter {
	return &Exporter{
		company:  company,
		sender:   sender,
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// EmailEnabled reports whether email exports can be offered.
func (e *Exporter) EmailEnabled() bool { return e.sender != nil }

// Export turns the snapshot into a document for the channel. For email, the
// PDF is sent to recipient; for downloads recipient is ignored. An incomplete
// snapshot yields calculator.ErrNotExportable.
func (e *Exporter) Export(ctx context.Context, snap calculator.Snapshot, channel Channel, recipient string) (Result, error) {
	doc, ok := Build(snap, e.company, e.now())
	if !ok {
		return Result{}, calculator.ErrNotExportable
	}

	var (
		res Result
		err error
	)
	res.Document = doc

	switch channel {
	case ChannelPDF:
		res.File, err = pdfFile(doc)
	case ChannelXLSX:
		res.File, err = xlsxFile(doc)
	case ChannelEmail:
		recipient, err = e.deliver(ctx, doc, recipient)
	default:
		err = fmt.Errorf("unknown export channel %q", channel)
	}
	if err != nil {
		e.logger.Error("quote export failed",
			zap.String("number", doc.Number),
			zap.String("channel", string(channel)),
			zap.Error(err))
		return Result{}, err
	}
	if channel != ChannelEmail {
		recipient = ""
	}

	lead := Lead{Document: doc, Channel: channel, Email: recipient}
	if e.store != nil {
		if err := e.store.SaveLead(ctx, lead); err != nil {
			e.logger.Error("store exported quote", zap.String("number", doc.Number), zap.Error(err))
		}
	}
	if e.notifier != nil {
		if err := e.notifier.QuoteExported(ctx, lead); err != nil {
			e.logger.Warn("notify about exported quote", zap.String("number", doc.Number), zap.Error(err))
		}
	}

	e.logger.Info("quote exported",
		zap.String("number", doc.Number),
		zap.String("channel", string(channel)),
		zap.Float64("total", doc.Totals.Total))
	return res, nil
}

func (e *Exporter) deliver(ctx context.Context, doc Document, recipient string) (string, error) {
	if e.sender == nil {
		return "", ErrEmailDisabled
	}
	addr, err := mailer.ValidateAddress(recipient)
	if err != nil {
		return "", err
	}
	pdf, err := pdfFile(doc)
	if err != nil {
		return "", err
	}

	msg := mailer.Message{
		To:      addr,
		Subject: fmt.Sprintf("Wycena posadzki żywicznej %s", doc.Number),
		Text:    RenderText(doc),
		Summary: doc.Summary(),
		Attachments: []mailer.Attachment{
			{Filename: pdf.Name, ContentType: pdf.ContentType, Data: pdf.Data},
		},
	}
	if err := e.sender.Send(ctx, msg); err != nil {
		return "", fmt.Errorf("send quote email: %w", err)
	}
	return addr, nil
}

func pdfFile(doc Document) (File, error) {
	data, err := RenderPDF(doc)
	if err != nil {
		return File{}, err
	}
	return File{Name: FileName(doc.Number, "pdf"), ContentType: "application/pdf", Data: data}, nil
}

func xlsxFile(doc Document) (File, error) {
	data, err := RenderXLSX(doc)
	if err != nil {
		return File{}, err
	}
	return File{
		Name:        FileName(doc.Number, "xlsx"),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Data:        data,
	}, nil
}
