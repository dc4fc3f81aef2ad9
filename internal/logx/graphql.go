package logx

import (
	"encoding/json"
)

// GraphQLRequest dumps an outgoing GraphQL document at debug level.
func GraphQLRequest(operation, endpoint, query string) {
	if !Enabled(LevelDebug) {
		return
	}
	Debug("GraphQL", "=== %s request ===\nEndpoint: %s\nQuery:\n%s", operation, endpoint, query)
}

// GraphQLResponse dumps a decoded GraphQL response at debug level.
func GraphQLResponse(operation string, response any) {
	if !Enabled(LevelDebug) {
		return
	}
	b, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		Debug("GraphQL", "=== %s response === (unprintable: %v)", operation, err)
		return
	}
	Debug("GraphQL", "=== %s response ===\n%s", operation, b)
}
