package instrumentation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusClass(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, "none"},
		{200, "2xx"},
		{204, "2xx"},
		{401, "4xx"},
		{404, "4xx"},
		{503, "5xx"},
		{42, "unknown"},
		{700, "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusClass(tt.code), "code %d", tt.code)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/tasks", "/tasks"},
		{"/tasks/7025", "/tasks/{id}"},
		{"/tasks/7025/close", "/tasks/{id}/close"},
		{"/tasks/7025/reopen", "/tasks/{id}/reopen"},
		{"/projects/2203306141", "/projects/{id}"},
		{"projects/", "/projects"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePath(tt.path))
		})
	}
}
