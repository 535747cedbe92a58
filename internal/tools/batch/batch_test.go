package batch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name    string
		param   any
		want    []string
		wantErr string
	}{
		{"single string", "42", []string{"42"}, ""},
		{"any slice", []any{"1", "2"}, []string{"1", "2"}, ""},
		{"string slice", []string{"1", "2"}, []string{"1", "2"}, ""},
		{"duplicates dropped", []any{"1", "2", "1"}, []string{"1", "2"}, ""},
		{"nil", nil, nil, "task_ids is required"},
		{"empty string", "", nil, "task_ids cannot be empty"},
		{"empty slice", []any{}, nil, "task_ids cannot be empty"},
		{"non-string item", []any{"1", 2}, nil, "task_ids[1] must be a string"},
		{"empty item", []any{"1", ""}, nil, "task_ids[1] cannot be empty"},
		{"wrong type", 42, nil, "must be a string or array of strings"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.param, "task_ids")
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseStringOrArray_TooMany(t *testing.T) {
	ids := make([]any, MaxItems+1)
	for i := range ids {
		ids[i] = fmt.Sprint(i)
	}

	_, err := ParseStringOrArray(ids, "task_ids")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 50")
}

func TestProcessBatch(t *testing.T) {
	results := ProcessBatch(context.Background(), []string{"1", "2", "3"}, func(_ context.Context, id string) (string, error) {
		if id == "2" {
			return "", errors.New("not found")
		}
		return "completed", nil
	})

	require.Len(t, results, 3)
	assert.Equal(t, NewSuccessResult("1", "completed"), results[0])
	assert.Equal(t, Result{ID: "2", Status: StatusError, Error: "not found"}, results[1])
	assert.Equal(t, StatusSuccess, results[2].Status)

	summary := Summarize(results)
	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.Successful)
	assert.Equal(t, 1, summary.Failed)
}

func TestProcessBatch_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	results := ProcessBatch(ctx, []string{"1", "2", "3"}, func(_ context.Context, id string) (string, error) {
		calls++
		cancel()
		return "ok", nil
	})

	assert.Equal(t, 1, calls)
	assert.Equal(t, StatusSuccess, results[0].Status)
	assert.Equal(t, context.Canceled.Error(), results[1].Error)
	assert.Equal(t, context.Canceled.Error(), results[2].Error)
}

func TestFormatResults(t *testing.T) {
	out := FormatResults([]Result{NewSuccessResult("1", "ok"), NewErrorResult("2", errors.New("boom"))})

	var br BatchResult
	require.NoError(t, json.Unmarshal([]byte(out), &br))
	assert.Equal(t, 2, br.Total)
	assert.Equal(t, 1, br.Successful)
	assert.Equal(t, 1, br.Failed)
	assert.Equal(t, "boom", br.Results[1].Error)
}
