package generate

// ContentBlock is one element of a message's content array. The wire
// format multiplexes text, tool_use, and tool_result blocks through the
// same shape; only the fields for the block's type are populated.
type ContentBlock struct {
	Type      string         `json:"type"`
	Text      string         `json:"text,omitempty"`
	ID        string         `json:"id,omitempty"`
	Name      string         `json:"name,omitempty"`
	Input     map[string]any `json:"input,omitempty"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
	Content   string         `json:"content,omitempty"`
}

// Message is one conversation turn on the wire.
type Message struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// Tool describes a callable tool in the API's schema format.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// ToolResult pairs a tool call id with the tool's output.
type ToolResult struct {
	ToolUseID string
	Content   string
}

// Reply is a decoded model response. StopReason "tool_use" means the
// model wants the ToolCalls executed before it can finish.
type Reply struct {
	Text       string
	ToolCalls  []ToolCall
	StopReason string
}

// TextMessage builds a plain text message.
func TextMessage(role, text string) Message {
	return Message{
		Role:    role,
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

// AssistantMessage rebuilds the assistant turn from a reply so tool_use
// blocks echo back with their original ids.
func AssistantMessage(reply *Reply) Message {
	var content []ContentBlock
	if reply.Text != "" {
		content = append(content, ContentBlock{Type: "text", Text: reply.Text})
	}
	for _, call := range reply.ToolCalls {
		content = append(content, ContentBlock{
			Type:  "tool_use",
			ID:    call.ID,
			Name:  call.Name,
			Input: call.Args,
		})
	}
	return Message{Role: "assistant", Content: content}
}

// ToolResultMessage builds the user turn carrying tool outputs.
func ToolResultMessage(results []ToolResult) Message {
	content := make([]ContentBlock, 0, len(results))
	for _, r := range results {
		content = append(content, ContentBlock{
			Type:      "tool_result",
			ToolUseID: r.ToolUseID,
			Content:   r.Content,
		})
	}
	return Message{Role: "user", Content: content}
}
