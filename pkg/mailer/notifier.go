package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Notifier delivers a message to an email address. Implementations may fail;
// callers decide whether a failure is fatal.
type Notifier interface {
	Notify(ctx context.Context, job EmailJob) error
}

// Sender is the transport used by DirectNotifier. *Mailgun implements it.
type Sender interface {
	Send(ctx context.Context, to, subject, text, html string) error
}

// Publisher enqueues JSON payloads. *helpers.RabbitPublisher implements it.
type Publisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// DirectNotifier renders and sends inline on the request path.
type DirectNotifier struct {
	Sender Sender
}

func NewDirectNotifier(s Sender) *DirectNotifier {
	return &DirectNotifier{Sender: s}
}

func (n *DirectNotifier) Notify(ctx context.Context, job EmailJob) error {
	if n.Sender == nil {
		return errors.New("mail sender not configured")
	}
	subject, text, html, err := job.Render()
	if err != nil {
		return fmt.Errorf("render %s: %w", job.Template, err)
	}
	return n.Sender.Send(ctx, job.To, subject, text, html)
}

// QueueNotifier hands the job to the email worker. A failed publish is
// reported as a failed send.
type QueueNotifier struct {
	Pub Publisher
}

func NewQueueNotifier(p Publisher) *QueueNotifier {
	return &QueueNotifier{Pub: p}
}

func (n *QueueNotifier) Notify(ctx context.Context, job EmailJob) error {
	if n.Pub == nil {
		return errors.New("mail queue not configured")
	}
	if _, _, _, err := job.Render(); err != nil {
		return fmt.Errorf("render %s: %w", job.Template, err)
	}
	return n.Pub.PublishJSON(ctx, job)
}

// LogNotifier writes the rendered message to the logger instead of sending it.
type LogNotifier struct {
	Logger *logrus.Logger
}

func NewLogNotifier(l *logrus.Logger) *LogNotifier {
	return &LogNotifier{Logger: l}
}

func (n *LogNotifier) Notify(_ context.Context, job EmailJob) error {
	subject, text, _, err := job.Render()
	if err != nil {
		return err
	}
	if n.Logger != nil {
		n.Logger.WithFields(logrus.Fields{"to": job.To, "subject": subject}).Info(text)
	}
	return nil
}
