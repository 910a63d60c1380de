package mailer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer/templates"
)

type fakeSender struct {
	to, subject, text, html string
	err                     error
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	f.to, f.subject, f.text, f.html = to, subject, text, html
	return f.err
}

type fakePublisher struct {
	bodies [][]byte
	err    error
}

func (f *fakePublisher) PublishJSON(_ context.Context, body any) error {
	if f.err != nil {
		return f.err
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	f.bodies = append(f.bodies, b)
	return nil
}

func otpJob() EmailJob {
	return EmailJob{To: "a@b.com", Template: templates.VerifyOTP, Data: templates.Data("Ann", "123456", 10)}
}

func TestDirectNotifierRendersAndSends(t *testing.T) {
	s := &fakeSender{}
	require.NoError(t, NewDirectNotifier(s).Notify(context.Background(), otpJob()))
	assert.Equal(t, "a@b.com", s.to)
	assert.Equal(t, "Email Verification OTP", s.subject)
	assert.Contains(t, s.text, "123456")
	assert.NotEmpty(t, s.html)
}

func TestDirectNotifierPropagatesSendError(t *testing.T) {
	boom := errors.New("boom")
	err := NewDirectNotifier(&fakeSender{err: boom}).Notify(context.Background(), otpJob())
	assert.ErrorIs(t, err, boom)

	err = NewDirectNotifier(nil).Notify(context.Background(), otpJob())
	assert.Error(t, err)
}

func TestDirectNotifierRawMessage(t *testing.T) {
	s := &fakeSender{}
	job := EmailJob{To: "a@b.com", Subject: "Hi", Text: "plain"}
	require.NoError(t, NewDirectNotifier(s).Notify(context.Background(), job))
	assert.Equal(t, "Hi", s.subject)
	assert.Equal(t, "plain", s.text)
}

func TestQueueNotifierPublishesJob(t *testing.T) {
	p := &fakePublisher{}
	require.NoError(t, NewQueueNotifier(p).Notify(context.Background(), otpJob()))
	require.Len(t, p.bodies, 1)

	var got EmailJob
	require.NoError(t, json.Unmarshal(p.bodies[0], &got))
	assert.Equal(t, "a@b.com", got.To)
	assert.Equal(t, templates.VerifyOTP, got.Template)
	assert.Equal(t, "123456", got.Data["Code"])
}

func TestQueueNotifierRejectsUnknownTemplate(t *testing.T) {
	p := &fakePublisher{}
	err := NewQueueNotifier(p).Notify(context.Background(), EmailJob{To: "a@b.com", Template: "missing"})
	assert.Error(t, err)
	assert.Empty(t, p.bodies)
}

func TestQueueNotifierPublishFailure(t *testing.T) {
	err := NewQueueNotifier(&fakePublisher{err: errors.New("down")}).Notify(context.Background(), otpJob())
	assert.Error(t, err)
}

func TestLogNotifierWritesMessage(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	require.NoError(t, NewLogNotifier(l).Notify(context.Background(), otpJob()))
	assert.Contains(t, buf.String(), "123456")
	assert.Contains(t, buf.String(), "a@b.com")
}

func TestMailgunConfigured(t *testing.T) {
	assert.True(t, Configured("mg.example.com", "key", "shop@example.com"))
	assert.False(t, Configured("mg.example.com", "", "shop@example.com"))

	var m *Mailgun
	assert.Error(t, m.Send(context.Background(), "a@b.com", "s", "t", ""))
}
