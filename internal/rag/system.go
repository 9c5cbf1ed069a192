// Package rag wires chunking, the vector index, retrieval tools, session
// history, and generation into the question answering loop.
package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/courseware-labs/ragtutor/internal/course"
	"github.com/courseware-labs/ragtutor/internal/generate"
	"github.com/courseware-labs/ragtutor/internal/search"
	"github.com/courseware-labs/ragtutor/internal/session"
)

// systemPrompt steers the model toward tool-backed, course-grounded
// answers. Course content questions go through search; outline questions
// through the outline tool; general knowledge is answered directly.
const systemPrompt = `You are an AI assistant specialized in course materials and educational content.

Tool usage:
- Use search_course_content for questions about specific course content or detailed educational materials.
- Use get_course_outline for questions about a course's structure, lesson list, or links.
- Answer general knowledge questions from your own knowledge without tools.
- If a search yields no results, say so clearly without guessing.

Responses should be brief, educational, and directly address the question. Do not mention the tools or your search process.`

// Index is the vector index surface the system depends on.
type Index interface {
	search.Index
	Add(ctx context.Context, meta course.Metadata, chunks []course.Chunk, force bool) (bool, error)
	HasCourse(ctx context.Context, courseID string) (bool, error)
	CourseCount(ctx context.Context) (int, error)
	ChunkCount(ctx context.Context) (int, error)
}

// Generator produces model replies, possibly containing tool calls.
type Generator interface {
	Generate(ctx context.Context, system string, messages []generate.Message, tools []generate.Tool) (*generate.Reply, error)
}

// Chunker splits documents into overlapping chunks.
type Chunker interface {
	Chunk(doc course.Document) []course.Chunk
}

// Answer is the outcome of one question. Truncated is set when the tool
// round budget ran out and the final answer was forced without tools.
type Answer struct {
	Text      string          `json:"text"`
	Sources   []course.Source `json:"sources"`
	Truncated bool            `json:"truncated"`
}

// Options tunes the answer loop.
type Options struct {
	MaxResults    int           // search result cap per tool call
	MaxToolRounds int           // tool rounds before the forced final call
	Timeout       time.Duration // wall clock budget per question
	Logger        *slog.Logger
}

// System answers questions over ingested course content.
type System struct {
	index         Index
	generator     Generator
	chunker       Chunker
	sessions      *session.Store
	maxResults    int
	maxToolRounds int
	timeout       time.Duration
	logger        *slog.Logger
}

// New creates the system. Zero option fields get defaults: 5 results,
// 2 tool rounds, 120s timeout.
func New(index Index, generator Generator, chunker Chunker, sessions *session.Store, opts Options) *System {
	if opts.MaxResults <= 0 {
		opts.MaxResults = 5
	}
	if opts.MaxToolRounds <= 0 {
		opts.MaxToolRounds = 2
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 120 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &System{
		index:         index,
		generator:     generator,
		chunker:       chunker,
		sessions:      sessions,
		maxResults:    opts.MaxResults,
		maxToolRounds: opts.MaxToolRounds,
		timeout:       opts.Timeout,
		logger:        opts.Logger,
	}
}

// Answer runs the tool-calling loop for one question. Each round the
// model either produces text, ending the loop, or requests tool calls
// whose results feed the next round. When the round budget runs out a
// final call without tools forces an answer from what was gathered.
// The user turn is recorded up front so history reflects the question
// even when generation fails; the assistant turn is recorded only on
// success, never fabricated.
func (s *System) Answer(ctx context.Context, query, sessionID string) (*Answer, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is empty")
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	system := systemPrompt
	if history := s.sessions.History(sessionID); len(history) > 0 {
		system += "\n\nPrevious conversation:\n" + formatHistory(history)
	}

	if sessionID != "" {
		s.sessions.Append(sessionID, "user", query)
	}

	registry := search.NewRegistry(
		search.NewCourseSearchTool(s.index, s.maxResults),
		search.NewCourseOutlineTool(s.index),
	)
	tools := apiTools(registry.Definitions())

	messages := []generate.Message{generate.TextMessage("user", query)}

	var reply *generate.Reply
	var err error
	truncated := false

	for round := 0; round < s.maxToolRounds; round++ {
		reply, err = s.generator.Generate(ctx, system, messages, tools)
		if err != nil {
			return nil, fmt.Errorf("generate round %d: %w", round, err)
		}
		if len(reply.ToolCalls) == 0 {
			break
		}

		messages = append(messages, generate.AssistantMessage(reply))

		results := make([]generate.ToolResult, 0, len(reply.ToolCalls))
		for _, call := range reply.ToolCalls {
			s.logger.Debug("executing tool", "tool", call.Name, "session", sessionID)
			output, execErr := registry.Execute(ctx, call.Name, call.Args)
			if execErr != nil {
				// The model sees the failure and can still answer from
				// what it has.
				s.logger.Warn("tool execution failed", "tool", call.Name, "error", execErr)
				output = fmt.Sprintf("Tool execution failed: %v", execErr)
			}
			results = append(results, generate.ToolResult{ToolUseID: call.ID, Content: output})
		}
		messages = append(messages, generate.ToolResultMessage(results))
	}

	if reply != nil && len(reply.ToolCalls) > 0 {
		reply, err = s.generator.Generate(ctx, system, messages, nil)
		if err != nil {
			return nil, fmt.Errorf("generate final: %w", err)
		}
		truncated = true
	}

	if sessionID != "" {
		s.sessions.Append(sessionID, "assistant", reply.Text)
	}

	return &Answer{
		Text:      reply.Text,
		Sources:   registry.Sources(),
		Truncated: truncated,
	}, nil
}

// NewSession creates a fresh session id.
func (s *System) NewSession() string {
	return session.NewSessionID()
}

// ListCourses returns catalog records for all ingested courses.
func (s *System) ListCourses(ctx context.Context) ([]course.Metadata, error) {
	return s.index.ListCourses(ctx)
}

// Status reports index size.
func (s *System) Status(ctx context.Context) (courses, chunks int, err error) {
	courses, err = s.index.CourseCount(ctx)
	if err != nil {
		return 0, 0, err
	}
	chunks, err = s.index.ChunkCount(ctx)
	if err != nil {
		return 0, 0, err
	}
	return courses, chunks, nil
}

// formatHistory renders retained turns for the system prompt.
func formatHistory(turns []session.Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		role := "User"
		if turn.Role == "assistant" {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, turn.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}

// apiTools converts tool definitions to the wire schema.
func apiTools(defs []search.ToolDefinition) []generate.Tool {
	tools := make([]generate.Tool, len(defs))
	for i, def := range defs {
		tools[i] = generate.Tool{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		}
	}
	return tools
}
