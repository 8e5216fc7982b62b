package event

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FormatPayload builds the webhook body for the given format.
func FormatPayload(format string, e Event) ([]byte, error) {
	switch format {
	case "slack":
		return formatSlack(e)
	default:
		return json.Marshal(e)
	}
}

func formatSlack(e Event) ([]byte, error) {
	payload := map[string]any{
		"blocks": []any{
			map[string]any{
				"type": "header",
				"text": map[string]any{
					"type": "plain_text",
					"text": fmt.Sprintf("headelf: %s", e.Type),
				},
			},
			map[string]any{
				"type": "section",
				"text": map[string]any{"type": "mrkdwn", "text": Summary(e)},
			},
		},
	}
	return json.Marshal(payload)
}

// Summary renders a one-line human description of e.
func Summary(e Event) string {
	switch e.Type {
	case ExtensionRegistered:
		return fmt.Sprintf("*Industry registered:* %s", e.Industry)
	case ActiveIndustriesUpdated:
		names := make([]string, len(e.Industries))
		for i, ind := range e.Industries {
			names[i] = string(ind)
		}
		return fmt.Sprintf("*Active industries:* %s", strings.Join(names, ", "))
	case ContextDetected:
		if len(e.Detection) == 0 {
			return "*Context detected:* no industry above threshold"
		}
		top := e.Detection[0]
		return fmt.Sprintf("*Context detected:* %s (%.2f) and %d more", top.Industry, top.Confidence, len(e.Detection)-1)
	case DecisionRouted:
		ok := 0
		for _, r := range e.Routing {
			if r.Success {
				ok++
			}
		}
		id := ""
		if e.Decision != nil {
			id = e.Decision.ID
		}
		return fmt.Sprintf("*Decision routed:* %s by %s, %d/%d handlers succeeded", id, e.Role, ok, len(e.Routing))
	}
	return string(e.Type)
}
