package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-lambda-go/lambdacontext"

	"ssm-restart-webhook/internal/webhook"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dispatcher, err := webhook.NewSSMDispatcherFromSession()
	if err != nil {
		logger.Error("failed to create ssm client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	lambda.Start(func(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
		h := webhook.New(dispatcher)
		h.Logger = logger
		if lc, ok := lambdacontext.FromContext(ctx); ok {
			h.Logger = logger.With(slog.String("aws_request_id", lc.AwsRequestID))
		}
		return h.Handle(ctx, event)
	})
}
