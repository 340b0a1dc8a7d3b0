package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolSchema_Definition(t *testing.T) {
	ts := ToolSchema{
		Name:        "calculate_deficit",
		Description: "Daily calorie balance.",
		Parameters:  json.RawMessage(`{"type":"object","properties":{"intake":{"type":"number"}},"required":["intake"]}`),
	}

	def := ts.Definition()
	assert.Equal(t, "function", def["type"])

	fn := def["function"].(map[string]any)
	assert.Equal(t, "calculate_deficit", fn["name"])
	params := fn["parameters"].(map[string]any)
	assert.Equal(t, []any{"intake"}, params["required"])
}

func TestToolSchema_Definition_BadParameters(t *testing.T) {
	ts := ToolSchema{Name: "x", Parameters: json.RawMessage(`not json`)}

	fn := ts.Definition()["function"].(map[string]any)
	params := fn["parameters"].(map[string]any)
	assert.Equal(t, "object", params["type"], "malformed parameters degrade to an empty object schema")
}

func TestToolResult_Constructors(t *testing.T) {
	ok := OKResult(map[string]any{"steps": 8500})
	assert.True(t, ok.Success)
	assert.Empty(t, ok.Error)

	fail := FailResult("no such metric")
	assert.False(t, fail.Success)
	assert.Nil(t, fail.Data)
	assert.Equal(t, "no such metric", fail.Error)

	assert.NotEmpty(t, FailResult("").Error, "failures always carry a reason")
}

func TestToolResult_Serialize(t *testing.T) {
	var decoded ToolResult
	require.NoError(t, json.Unmarshal([]byte(OKResult(map[string]any{"steps": 8500.0}).Serialize()), &decoded))
	assert.True(t, decoded.Success)
	assert.Equal(t, 8500.0, decoded.Data["steps"])

	s := FailResult("boom").Serialize()
	assert.Contains(t, s, `"success":false`)
	assert.Contains(t, s, "boom")
	assert.NotContains(t, s, `"data"`)
}

func TestMessages_TranscriptOrderAndClone(t *testing.T) {
	msgs := NewMessages(NewSystemMessage("be brief"))
	msgs.AddUser("steps?")
	msgs.AddAssistant("", []ToolCall{{ID: "c1", Name: "read_steps"}})
	msgs.AddToolResult("c1", "read_steps", `{"success":true}`)

	require.Equal(t, 4, msgs.Len())
	assert.Equal(t, RoleTool, msgs.Messages[3].Role)
	assert.Equal(t, "c1", msgs.Messages[3].ToolCallID)

	clone := msgs.Clone()
	clone.AddUser("another")
	assert.Equal(t, 4, msgs.Len(), "clones do not share a backing slice")
	assert.Equal(t, 5, clone.Len())
}

func TestToolCall_ToWireMap(t *testing.T) {
	wire := ToolCall{ID: "c1", Name: "analyze_trend", Arguments: map[string]any{"window": 7.0}}.ToWireMap()

	assert.Equal(t, "c1", wire["id"])
	fn := wire["function"].(map[string]any)
	assert.Equal(t, "analyze_trend", fn["name"])
	assert.JSONEq(t, `{"window":7}`, fn["arguments"].(string))
}
