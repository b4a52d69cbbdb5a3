package batch

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func TestParseStringOrArray(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		paramName string
		want      []string
		wantErr   bool
	}{
		{
			name:      "single string",
			input:     "msg123",
			paramName: "messageIds",
			want:      []string{"msg123"},
		},
		{
			name:      "array of strings",
			input:     []interface{}{"id1", "id2", "id3"},
			paramName: "messageIds",
			want:      []string{"id1", "id2", "id3"},
		},
		{
			name:      "nil input",
			input:     nil,
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "empty string",
			input:     "",
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "empty array",
			input:     []interface{}{},
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "array with non-string",
			input:     []interface{}{"id1", 123, "id3"},
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "array with empty string",
			input:     []interface{}{"id1", "", "id3"},
			paramName: "messageIds",
			wantErr:   true,
		},
		{
			name:      "invalid type",
			input:     123,
			paramName: "messageIds",
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStringOrArray(tt.input, tt.paramName)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseStringOrArray() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProcessBatch(t *testing.T) {
	ids := []string{"a", "b", "c"}

	results := ProcessBatch(ids, func(id string) (string, error) {
		if id == "b" {
			return "", errors.New("boom")
		}
		return "handled " + id, nil
	})

	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	if results[0].Status != "success" || results[0].Result != "handled a" {
		t.Errorf("unexpected first result: %+v", results[0])
	}
	if results[1].Status != "error" || results[1].Error != "boom" {
		t.Errorf("failing item not contained: %+v", results[1])
	}
	if results[2].Status != "success" {
		t.Errorf("item after failure should still run: %+v", results[2])
	}
}

func TestFailureError(t *testing.T) {
	if err := FailureError(nil); err != nil {
		t.Errorf("empty batch should not be a failure: %v", err)
	}
	if err := FailureError([]Result{{ID: "a", Status: "success"}}); err != nil {
		t.Errorf("all-success batch should not be a failure: %v", err)
	}

	err := FailureError([]Result{
		{ID: "a", Status: "error", Error: "boom"},
		{ID: "b", Status: "error", Error: "boom"},
	})
	if err == nil {
		t.Fatal("all-failed batch must report an error")
	}
	if got, want := err.Error(), "2 of 2 operations failed"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	if err := FailureError([]Result{
		{ID: "a", Status: "success"},
		{ID: "b", Status: "error", Error: "boom"},
	}); err == nil {
		t.Error("partial failure must report an error")
	}
}

func TestFormatResults(t *testing.T) {
	results := []Result{
		{ID: "a", Status: "success", Result: "ok"},
		{ID: "b", Status: "error", Error: "boom"},
	}

	var br BatchResult
	if err := json.Unmarshal([]byte(FormatResults(results)), &br); err != nil {
		t.Fatalf("FormatResults produced invalid JSON: %v", err)
	}
	if br.Total != 2 || br.Successful != 1 || br.Failed != 1 {
		t.Errorf("unexpected counts: %+v", br)
	}
	if len(br.Results) != 2 {
		t.Errorf("got %d results, want 2", len(br.Results))
	}
}
