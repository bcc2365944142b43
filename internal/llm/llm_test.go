package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForce(t *testing.T) {
	tc := Force("get_summary_by_title")
	assert.Equal(t, ToolChoiceFunction, tc.Mode)
	assert.Equal(t, "get_summary_by_title", tc.Function)
}

func TestResponse_FirstCall(t *testing.T) {
	r := &Response{ToolCalls: []ToolCall{
		{ID: "a", Name: "other", Arguments: `{}`},
		{ID: "b", Name: "get_summary_by_title", Arguments: `{"title":"1984"}`},
	}}
	call, ok := r.FirstCall("get_summary_by_title")
	require.True(t, ok)
	assert.Equal(t, "b", call.ID)

	_, ok = r.FirstCall("missing")
	assert.False(t, ok)

	var nilResp *Response
	_, ok = nilResp.FirstCall("x")
	assert.False(t, ok)
}

func TestToolCall_DecodeArguments(t *testing.T) {
	var args struct {
		Title string `json:"title"`
	}
	require.NoError(t, ToolCall{Arguments: `{"title":"The Hobbit"}`}.DecodeArguments(&args))
	assert.Equal(t, "The Hobbit", args.Title)
	require.Error(t, ToolCall{Arguments: `{title`}.DecodeArguments(&args))
}
