package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"ssm-restart-webhook/internal/webhook"
)

const maxBodySize = 1 << 20

type server struct {
	handler *webhook.Handler
	logger  *slog.Logger
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.getRoot)
	mux.HandleFunc("POST /webhook", s.postWebhook)
	mux.HandleFunc("POST /container/webhook", s.postWebhook)
	return mux
}

func (s *server) getRoot(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *server) postWebhook(w http.ResponseWriter, r *http.Request) {
	requestID := r.Header.Get("X-Request-Id")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := s.logger.With(slog.String("request_id", requestID))

	w.Header().Set("X-Request-Id", requestID)

	var event webhook.Event
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		log.Error("failed to read request body", slog.String("error", err.Error()))
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResponse(w, webhook.NewResponse(http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Error: request body exceeds %d bytes", tooLarge.Limit)))
			return
		}
		writeResponse(w, webhook.NewResponse(http.StatusBadRequest,
			fmt.Sprintf("Error parsing request: %s", err)))
		return
	}
	if len(body) > 0 {
		b := string(body)
		event.Body = &b
	}

	h := *s.handler
	h.Logger = log
	writeResponse(w, h.Process(r.Context(), event))
}

func writeResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	w.Write([]byte(resp.Body))
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	dispatcher, err := webhook.NewSSMDispatcherFromSession()
	if err != nil {
		logger.Error("failed to create ssm client", slog.String("error", err.Error()))
		os.Exit(1)
	}

	s := &server{handler: webhook.New(dispatcher), logger: logger}
	slog.Info("Running on port :3000...")

	err = http.ListenAndServe(":3000", s.routes())
	if errors.Is(err, http.ErrServerClosed) {
		slog.Error("server closed", slog.String("error", err.Error()))
	} else if err != nil {
		slog.Error("error starting server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
