package todoisttest

import (
	"context"
	"strings"
)

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	body, _ := ctx.Value(bodyKey{}).(map[string]any)
	if body == nil {
		return map[string]any{}
	}
	return body
}

// routeOf maps a concrete path onto the route used by Fail,
// e.g. "/tasks/1001/close" becomes "/tasks/{id}/close".
func routeOf(path string) string {
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) >= 2 {
		parts[1] = "{id}"
	}
	return "/" + strings.Join(parts, "/")
}
