package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

const valueErrorPrefix = "Value error, "

// DetailMessage extracts the human readable detail from an error body. It
// understands the plain {"detail": "..."} form and the validation list form
// {"detail": [{"msg": "..."}]}. It returns "" when no detail is present.
func DetailMessage(body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Detail) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		return text
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(envelope.Detail, &items); err == nil {
		for _, item := range items {
			if item.Msg != "" {
				return strings.TrimPrefix(item.Msg, valueErrorPrefix)
			}
		}
	}
	return ""
}

// DecodeCandidates reads the review payload. The service keys the list by the
// caller's address, so besides {"numbers": [...]} any object with exactly one
// key holding a string array is accepted.
func DecodeCandidates(body []byte) ([]string, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(body, &obj); err != nil {
		return nil, fmt.Errorf("review payload is not an object: %w", err)
	}

	raw, ok := obj["numbers"]
	if !ok {
		if len(obj) != 1 {
			return nil, fmt.Errorf("review payload has %d keys, want 1", len(obj))
		}
		for _, v := range obj {
			raw = v
		}
	}

	var numbers []string
	if err := json.Unmarshal(raw, &numbers); err != nil {
		return nil, fmt.Errorf("review payload is not a list of strings: %w", err)
	}
	if numbers == nil {
		return nil, errors.New("review payload list is null")
	}
	return numbers, nil
}
