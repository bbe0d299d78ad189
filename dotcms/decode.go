package dotcms

import (
	"bytes"
	"encoding/json"
	"strings"
)

type restEnvelope struct {
	Entity json.RawMessage `json:"entity"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type graphQLEnvelope struct {
	Data   json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// DecodeREST unmarshals the "entity" of a REST page payload into v.
func DecodeREST(payload []byte, v any) error {
	var env restEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return &MalformedResponseError{Detail: "rest envelope", Err: err}
	}
	if len(env.Errors) > 0 {
		return &MalformedResponseError{Detail: joinMessages(len(env.Errors), func(i int) string { return env.Errors[i].Message })}
	}
	if isNull(env.Entity) {
		return &MalformedResponseError{Detail: "rest payload has no entity"}
	}
	if err := json.Unmarshal(env.Entity, v); err != nil {
		return &MalformedResponseError{Detail: "rest entity", Err: err}
	}
	return nil
}

// DecodeGraphQL unmarshals the "data" of a GraphQL payload into v. GraphQL
// errors reported with a 200 status are returned as MalformedResponseError.
func DecodeGraphQL(payload []byte, v any) error {
	var env graphQLEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return &MalformedResponseError{Detail: "graphql envelope", Err: err}
	}
	if len(env.Errors) > 0 {
		return &MalformedResponseError{Detail: joinMessages(len(env.Errors), func(i int) string { return env.Errors[i].Message })}
	}
	if isNull(env.Data) {
		return &MalformedResponseError{Detail: "graphql payload has no data"}
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return &MalformedResponseError{Detail: "graphql data", Err: err}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func joinMessages(n int, msg func(int) string) string {
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		parts = append(parts, msg(i))
	}
	return "upstream errors: " + strings.Join(parts, "; ")
}
