package audit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFields(t *testing.T) {
	raw := json.RawMessage(`{
		"model": {"display_name": "Opus", "id": "x"},
		"context_window": {"used_percentage": 12.5},
		"tags": ["a", {"b": null}],
		"empty": {},
		"none": []
	}`)

	want := []Field{
		{Path: "context_window.used_percentage", Value: "12.5"},
		{Path: "empty", Value: "{}"},
		{Path: "model.display_name", Value: `"Opus"`},
		{Path: "model.id", Value: `"x"`},
		{Path: "none", Value: "[]"},
		{Path: "tags[0]", Value: `"a"`},
		{Path: "tags[1].b", Value: "null"},
	}
	assert.Equal(t, want, Fields(raw))
}

func TestFieldsInvalidJSON(t *testing.T) {
	assert.Nil(t, Fields(json.RawMessage(`{`)))
}
