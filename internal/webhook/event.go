package webhook

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
)

// Event is the envelope the function is invoked with. Body is nil when the
// envelope has no body or an explicit null.
type Event struct {
	Body            *string `json:"body"`
	IsBase64Encoded bool    `json:"isBase64Encoded"`
}

// Payload is the part of the alert webhook body the handler reads.
type Payload struct {
	ImpactedEntities []string `json:"impactedEntities"`
}

// RequestError is an input error the caller can correct.
type RequestError struct {
	StatusCode int
	Message    string
}

func (e *RequestError) Error() string {
	return e.Message
}

func badRequest(message string) *RequestError {
	return &RequestError{StatusCode: http.StatusBadRequest, Message: message}
}

func parseError(err error) *RequestError {
	return badRequest(fmt.Sprintf("Error parsing request: %s", err))
}

var errMissingBody = errors.New("Missing body in request")

// Keys are matched exactly. encoding/json folds case when decoding into a
// struct, which would accept "IMPACTEDENTITIES" or "BODY".
const (
	bodyKey             = "body"
	base64Key           = "isBase64Encoded"
	impactedEntitiesKey = "impactedEntities"
)

// decodeEvent reads the envelope. Anything that is not an object with a
// body is reported as a missing body.
func decodeEvent(raw json.RawMessage) (Event, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Event{}, errMissingBody
	}

	var event Event
	if err := decodeField(fields, bodyKey, &event.Body); err != nil {
		return Event{}, err
	}
	if err := decodeField(fields, base64Key, &event.IsBase64Encoded); err != nil {
		return Event{}, err
	}
	return event, nil
}

// decodeField decodes fields[key] into v. Absent keys leave v untouched.
func decodeField(fields map[string]json.RawMessage, key string, v any) error {
	raw, ok := fields[key]
	if !ok {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

func (e Event) payload() (Payload, error) {
	if e.Body == nil {
		return Payload{}, errMissingBody
	}

	body := []byte(*e.Body)
	if e.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(*e.Body)
		if err != nil {
			return Payload{}, err
		}
		body = decoded
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return Payload{}, err
	}

	var p Payload
	if err := decodeField(fields, impactedEntitiesKey, &p.ImpactedEntities); err != nil {
		return Payload{}, err
	}
	return p, nil
}

// NewResponse builds a response whose body is message encoded as a JSON string.
func NewResponse(statusCode int, message string) events.APIGatewayProxyResponse {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(message); err != nil {
		buf.Reset()
		buf.WriteString(`""`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bytes.TrimRight(buf.Bytes(), "\n")),
	}
}

// String renders the envelope the way it arrived, with the body as text.
func (e Event) String() string {
	fields := map[string]any{bodyKey: e.Body}
	if e.IsBase64Encoded {
		fields[base64Key] = true
	}
	out, err := json.Marshal(fields)
	if err != nil {
		return fmt.Sprintf("%+v", fields)
	}
	return string(out)
}
