package otpflow

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// replyKind tags the small union of server body shapes the service produces.
type replyKind int

const (
	replySuccess replyKind = iota
	replyValidation
	replyRateLimit
	replyGeneric
)

// serverReply is the resolved interpretation of one HTTP response. Bodies are
// loosely typed JSON; parseServerReply is the single pure function that turns
// them into this union so the flows never touch raw maps for control flow.
type serverReply struct {
	kind    replyKind
	status  int
	message string
	code    string

	// rate-limit fields, populated only for kind == replyRateLimit
	retryAfter int
	resetAt    string
	details    *RateLimitDetails

	body map[string]any
}

// parseServerReply interprets status and body defensively: an empty or
// non-JSON error body becomes a synthetic reply carrying the HTTP status
// instead of an error.
func parseServerReply(status int, body []byte) serverReply {
	decoded := map[string]any{}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &decoded); err != nil {
			decoded = map[string]any{}
		}
	}

	if status >= 200 && status < 300 {
		return serverReply{
			kind:   replySuccess,
			status: status,
			body:   decoded,
		}
	}

	reply := serverReply{
		status:  status,
		message: stringField(decoded, "detail", "error", "title"),
		code:    stringField(decoded, "errorCode", "reason", "code"),
		body:    decoded,
	}
	if reply.message == "" {
		reply.message = fmt.Sprintf("Request failed with status %d", status)
	}
	if reply.code == "" {
		reply.code = "HTTP_" + strconv.Itoa(status)
	}

	switch {
	case status == 429:
		reply.kind = replyRateLimit
		reply.retryAfter = intField(decoded, "retry_after")
		reply.resetAt = stringField(decoded, "reset_at", "reset_at_iso")
		reply.details = detailsField(decoded)
	case status == 400 || status == 422:
		reply.kind = replyValidation
	default:
		reply.kind = replyGeneric
	}
	return reply
}

// stringField returns the first present non-empty string among keys.
func stringField(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

// intField reads a numeric field that may arrive as JSON number or string.
func intField(m map[string]any, key string) int {
	switch v := m[key].(type) {
	case float64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func detailsField(m map[string]any) *RateLimitDetails {
	rawDetails, ok := m["rate_limit_details"].(map[string]any)
	if !ok {
		return nil
	}
	return &RateLimitDetails{
		Limit:      intField(rawDetails, "limit"),
		Remaining:  intField(rawDetails, "remaining"),
		WindowSecs: intField(rawDetails, "window_seconds"),
		Scope:      stringField(rawDetails, "scope"),
	}
}
