package agent

import (
	"encoding/json"
	"fmt"
	"strings"

	"trading-supervisor/internal/domain"
)

// Event is an inbound agent or API-Gateway invocation reduced to what the
// supervisor needs.
type Event struct {
	Query             string
	SessionID         string
	SessionAttributes map[string]string
	// Gateway is set when the event came through an HTTP gateway and
	// should be answered in gateway form.
	Gateway bool
}

// ParseEvent decodes a raw event. Gateway events carry the payload in
// "body", either as a JSON string or as an object.
func ParseEvent(raw []byte) (Event, error) {
	var outer map[string]any
	if err := json.Unmarshal(raw, &outer); err != nil || outer == nil {
		return Event{}, domain.Validationf("event must be a JSON object")
	}

	ev := Event{
		Gateway:   has(outer, "httpMethod") || has(outer, "requestContext"),
		SessionID: stringField(outer, "sessionId"),
	}
	if attrs, ok := outer["sessionAttributes"].(map[string]any); ok {
		ev.SessionAttributes = make(map[string]string, len(attrs))
		for k, v := range attrs {
			ev.SessionAttributes[k] = fmt.Sprint(v)
		}
	}

	payload := outer
	if has(outer, "body") {
		body, err := unwrapBody(outer["body"])
		if err != nil {
			return ev, err
		}
		payload = body
		if ev.SessionID == "" {
			ev.SessionID = stringField(body, "sessionId")
		}
	}

	q, err := ExtractQuery(payload)
	if err != nil {
		return ev, err
	}
	ev.Query = q
	return ev, nil
}

func unwrapBody(body any) (map[string]any, error) {
	switch b := body.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return b, nil
	case string:
		if strings.TrimSpace(b) == "" {
			return map[string]any{}, nil
		}
		var m map[string]any
		if err := json.Unmarshal([]byte(b), &m); err != nil {
			return nil, domain.Validationf("invalid JSON in request body")
		}
		if m == nil {
			return map[string]any{}, nil
		}
		return m, nil
	default:
		return nil, domain.Validationf("request body must be a JSON object")
	}
}

// ExtractQuery returns the query text from a payload, preferring
// "inputText", then "query", then "text".
func ExtractQuery(payload map[string]any) (string, error) {
	if payload == nil {
		return "", domain.Validationf("event must be a JSON object")
	}

	v, ok := payload["inputText"]
	if !ok || v == nil {
		v = firstSet(payload, "query", "text")
	}
	if isEmpty(v) {
		return "", domain.Validationf("no query found in event: expected 'inputText', 'query', or 'text' field")
	}

	s, ok := v.(string)
	if !ok {
		return "", domain.Validationf("query must be a string, got %T", v)
	}
	if strings.TrimSpace(s) == "" {
		return "", domain.Validationf("query cannot be empty or whitespace only")
	}
	return s, nil
}

func firstSet(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v := m[k]; !isEmpty(v) {
			return v
		}
	}
	return nil
}

// isEmpty reports JSON values that carry nothing: null, "", false, 0 and
// empty containers.
func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case bool:
		return !t
	case float64:
		return t == 0
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	}
	return false
}

func has(m map[string]any, key string) bool {
	_, ok := m[key]
	return ok
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}
