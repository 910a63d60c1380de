package main

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ecommerce-backend/pkg/helpers"
	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer"
	"github.com/oksasatya/go-ecommerce-backend/pkg/mailer/templates"
)

type sent struct {
	to, subject, text, html string
}

type fakeSender struct {
	err  error
	sent []sent
}

func (f *fakeSender) Send(_ context.Context, to, subject, text, html string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sent{to, subject, text, html})
	return nil
}

func encode(t *testing.T, job mailer.EmailJob) []byte {
	t.Helper()
	b, err := json.Marshal(job)
	require.NoError(t, err)
	return b
}

func TestProcessTemplateJob(t *testing.T) {
	s := &fakeSender{}
	job := mailer.EmailJob{To: "a@b.com", Template: " Verify_OTP ", Data: templates.Data("Ann", "123456", 10)}

	got := process(context.Background(), s, encode(t, job), helpers.DiscardLogger())
	assert.Equal(t, ack, got)
	require.Len(t, s.sent, 1)
	assert.Equal(t, "a@b.com", s.sent[0].to)
	assert.NotEmpty(t, s.sent[0].subject)
	assert.Contains(t, s.sent[0].text, "123456")
	assert.Contains(t, s.sent[0].html, "123456")
}

func TestProcessRawJob(t *testing.T) {
	s := &fakeSender{}
	job := mailer.EmailJob{To: "a@b.com", Subject: "hi", Text: "plain"}

	assert.Equal(t, ack, process(context.Background(), s, encode(t, job), helpers.DiscardLogger()))
	require.Len(t, s.sent, 1)
	assert.Equal(t, sent{"a@b.com", "hi", "plain", ""}, s.sent[0])
}

func TestProcessDropsBadMessages(t *testing.T) {
	logger := helpers.DiscardLogger()
	s := &fakeSender{}

	assert.Equal(t, drop, process(context.Background(), s, []byte("{"), logger))
	assert.Equal(t, drop, process(context.Background(), s, encode(t, mailer.EmailJob{Subject: "x"}), logger))
	assert.Equal(t, drop, process(context.Background(), s, encode(t, mailer.EmailJob{To: "a@b.com", Template: "nope"}), logger))
	assert.Empty(t, s.sent)
}

func TestProcessRetriesOnSendFailure(t *testing.T) {
	s := &fakeSender{err: errors.New("mailgun down")}
	job := mailer.EmailJob{To: "a@b.com", Template: templates.PasswordChanged, Data: templates.Data("Ann", "", 0)}

	assert.Equal(t, retry, process(context.Background(), s, encode(t, job), helpers.DiscardLogger()))
}
