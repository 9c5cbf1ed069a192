package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/courseware-labs/ragtutor/internal/rag"
)

// makeAskHandler creates the answer_question tool handler.
// A missing session id starts a new conversation; the id in the output
// lets the client ask follow-up questions with context.
func makeAskHandler(system *rag.System) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		sessionID := input.SessionID
		if sessionID == "" {
			sessionID = system.NewSession()
		}

		answer, err := system.Answer(ctx, input.Query, sessionID)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("answer failed: %w", err)
		}

		sources := make([]SourceRef, 0, len(answer.Sources))
		for _, s := range answer.Sources {
			sources = append(sources, SourceRef{Label: s.Label, Link: s.Link})
		}

		return nil, AskOutput{
			Answer:    answer.Text,
			Sources:   sources,
			SessionID: sessionID,
			Truncated: answer.Truncated,
		}, nil
	}
}

// makeListCoursesHandler creates the list_courses tool handler.
func makeListCoursesHandler(system *rag.System) func(
	context.Context, *mcp.CallToolRequest, ListCoursesInput,
) (*mcp.CallToolResult, ListCoursesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListCoursesInput) (
		*mcp.CallToolResult, ListCoursesOutput, error,
	) {
		courses, err := system.ListCourses(ctx)
		if err != nil {
			return nil, ListCoursesOutput{}, fmt.Errorf("failed to list courses: %w", err)
		}

		infos := make([]CourseInfo, 0, len(courses))
		for _, c := range courses {
			infos = append(infos, CourseInfo{
				Title:       c.Title,
				Link:        c.Link,
				Instructor:  c.Instructor,
				LessonCount: len(c.Lessons),
				IngestedAt:  c.IngestedAt,
			})
		}

		return nil, ListCoursesOutput{Courses: infos, Count: len(infos)}, nil
	}
}

// makeStatusHandler creates the get_index_status tool handler.
func makeStatusHandler(system *rag.System) func(
	context.Context, *mcp.CallToolRequest, StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input StatusInput) (
		*mcp.CallToolResult, StatusOutput, error,
	) {
		courseCount, chunkCount, err := system.Status(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to read index status: %w", err)
		}

		courses, err := system.ListCourses(ctx)
		if err != nil {
			return nil, StatusOutput{}, fmt.Errorf("failed to list courses: %w", err)
		}
		titles := make([]string, 0, len(courses))
		for _, c := range courses {
			titles = append(titles, c.Title)
		}

		return nil, StatusOutput{
			TotalCourses: courseCount,
			TotalChunks:  chunkCount,
			CourseTitles: titles,
		}, nil
	}
}
