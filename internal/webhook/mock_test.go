package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
)

type mockDispatcher struct {
	SendRestartFunc func(ctx context.Context, instanceID string) (string, error)
	Calls           []string
}

func (m *mockDispatcher) SendRestart(ctx context.Context, instanceID string) (string, error) {
	m.Calls = append(m.Calls, instanceID)
	if m.SendRestartFunc != nil {
		return m.SendRestartFunc(ctx, instanceID)
	}
	return "cmd-0001", nil
}

func newTestHandler(d Dispatcher) *Handler {
	h := New(d)
	h.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	return h
}

func responseMessage(resp events.APIGatewayProxyResponse) (string, error) {
	var message string
	if err := json.Unmarshal([]byte(resp.Body), &message); err != nil {
		return "", err
	}
	return message, nil
}
