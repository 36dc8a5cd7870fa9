package notifications_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/restaurant-seating/internal/notifications"
)

type fakeSender struct {
	sent []notifications.SendEmailRequest
	err  error
}

func (f *fakeSender) Send(req notifications.SendEmailRequest) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, req)
	return nil
}

func emailBody(t *testing.T) []byte {
	t.Helper()
	body, err := json.Marshal(notifications.SendEmailRequest{
		FromAddress: "noreply@example.com",
		Destination: notifications.Destination{ToAddresses: []string{"ada@example.com"}},
		Message:     notifications.Message{Subject: "hi", HTMLBody: "<b>hello</b>"},
	})
	require.NoError(t, err)
	return body
}

func TestProcessMessageSends(t *testing.T) {
	sender := &fakeSender{}
	w := notifications.NewDeliverWorker(sender)

	require.NoError(t, w.ProcessMessage(emailBody(t)))
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"ada@example.com"}, sender.sent[0].Destination.ToAddresses)
}

func TestProcessMessageKeepsFailedSendQueued(t *testing.T) {
	sender := &fakeSender{err: errors.New("relay refused")}
	w := notifications.NewDeliverWorker(sender)

	assert.Error(t, w.ProcessMessage(emailBody(t)))
}

func TestProcessMessageDropsUndecodable(t *testing.T) {
	sender := &fakeSender{}
	w := notifications.NewDeliverWorker(sender)

	assert.NoError(t, w.ProcessMessage([]byte("{broken")))
	assert.Empty(t, sender.sent)
}
