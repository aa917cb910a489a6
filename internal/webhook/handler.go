package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

type Handler struct {
	Instances  InstanceMapping
	Dispatcher Dispatcher
	Logger     *slog.Logger
}

func New(d Dispatcher) *Handler {
	return &Handler{
		Instances:  DefaultInstances,
		Dispatcher: d,
		Logger:     slog.Default(),
	}
}

func (h *Handler) logger() *slog.Logger {
	if h.Logger == nil {
		return slog.Default()
	}
	return h.Logger
}

// Handle is the Lambda entry point. The error is always nil: every failure
// becomes a response.
func (h *Handler) Handle(ctx context.Context, raw json.RawMessage) (events.APIGatewayProxyResponse, error) {
	h.logger().Info("Received event", slog.String("event", string(raw)))

	event, err := decodeEvent(raw)
	if err != nil {
		return errorResponse(parseError(err)), nil
	}
	return h.process(ctx, event), nil
}

// Process runs an already decoded event.
func (h *Handler) Process(ctx context.Context, event Event) events.APIGatewayProxyResponse {
	h.logger().Info("Received event", slog.String("event", event.String()))
	return h.process(ctx, event)
}

func (h *Handler) process(ctx context.Context, event Event) events.APIGatewayProxyResponse {
	instanceID, err := h.resolve(event)
	if err != nil {
		h.logger().Warn("rejected webhook", slog.String("error", err.Error()))
		return errorResponse(err)
	}

	log := h.logger().With(slog.String("instance_id", instanceID))
	commandID, err := h.Dispatcher.SendRestart(ctx, instanceID)
	if err != nil {
		log.Error("failed to send restart command", slog.String("error", err.Error()))
		return NewResponse(http.StatusInternalServerError, fmt.Sprintf("Error: %s", err))
	}

	log.Info("sent restart command", slog.String("command_id", commandID))
	return NewResponse(http.StatusOK, fmt.Sprintf("Successfully sent restart command to %s", instanceID))
}

func (h *Handler) resolve(event Event) (string, error) {
	payload, err := event.payload()
	if err != nil {
		return "", parseError(err)
	}

	if len(payload.ImpactedEntities) == 0 {
		return "", badRequest("Error: No impactedEntities found in webhook payload.")
	}

	instanceID, ok := h.Instances.Resolve(payload.ImpactedEntities)
	if !ok {
		return "", badRequest("Error: No matching EC2 instance found for impactedEntities.")
	}
	return instanceID, nil
}

func errorResponse(err error) events.APIGatewayProxyResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return NewResponse(reqErr.StatusCode, reqErr.Message)
	}
	return NewResponse(http.StatusInternalServerError, fmt.Sprintf("Error: %s", err))
}
