package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/nhle/project-dashboard/internal/apperr"
)

// errorFromResponse maps a non-2xx response onto the error taxonomy,
// preferring the server-supplied message.
func errorFromResponse(status int, contentType string, payload []byte) error {
	detail := summarizeResponseBody(contentType, payload)
	if status == http.StatusNotFound {
		return apperr.NotFound(detail)
	}
	return apperr.Server(status, detail)
}

func summarizeResponseBody(contentType string, payload []byte) string {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return ""
	}
	if isLikelyHTMLResponse(contentType, trimmed) {
		return ""
	}
	if msg, ok := extractJSONErrorSummary(contentType, payload); ok {
		return msg
	}
	if looksLikeJSONContent(contentType, trimmed) {
		return ""
	}
	return truncateResponseText(trimmed, 200)
}

func classifyDecodeError(contentType string, payload []byte, err error) string {
	trimmed := strings.TrimSpace(string(payload))
	if isLikelyHTMLResponse(contentType, trimmed) {
		return "expected JSON response but received HTML"
	}
	if !looksLikeJSONContent(contentType, trimmed) {
		return "expected JSON response but received non-JSON body"
	}
	return fmt.Sprintf("invalid JSON response: %v", err)
}

func extractJSONErrorSummary(contentType string, payload []byte) (string, bool) {
	trimmed := strings.TrimSpace(string(payload))
	if !looksLikeJSONContent(contentType, trimmed) {
		return "", false
	}

	var body map[string]any
	if err := json.Unmarshal(payload, &body); err != nil {
		return "", false
	}

	for _, key := range []string{"message", "error", "detail"} {
		raw, ok := body[key]
		if !ok {
			continue
		}
		switch value := raw.(type) {
		case string:
			value = strings.TrimSpace(value)
			if value != "" {
				return truncateResponseText(value, 200), true
			}
		case map[string]any:
			if nested, ok := value["message"].(string); ok && strings.TrimSpace(nested) != "" {
				return truncateResponseText(strings.TrimSpace(nested), 200), true
			}
		}
	}

	return "", false
}

func looksLikeJSONContent(contentType, body string) bool {
	value := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	if value == "application/json" || strings.HasSuffix(value, "+json") {
		return true
	}
	return strings.HasPrefix(body, "{") || strings.HasPrefix(body, "[")
}

func isLikelyHTMLResponse(contentType, body string) bool {
	if strings.Contains(strings.ToLower(contentType), "text/html") {
		return true
	}
	lower := strings.ToLower(body)
	return strings.HasPrefix(lower, "<!doctype html") || strings.HasPrefix(lower, "<html")
}

func truncateResponseText(value string, max int) string {
	collapsed := strings.Join(strings.Fields(value), " ")
	if len(collapsed) <= max {
		return collapsed
	}
	return collapsed[:max-3] + "..."
}
