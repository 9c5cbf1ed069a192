package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/courseware-labs/ragtutor/internal/course"
)

// CourseOutlineTool returns a course's title, link, and full lesson list
// from the catalog.
type CourseOutlineTool struct {
	index Index
}

// NewCourseOutlineTool creates the outline tool.
func NewCourseOutlineTool(index Index) *CourseOutlineTool {
	return &CourseOutlineTool{index: index}
}

func (t *CourseOutlineTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "get_course_outline",
		Description: "Get the full outline of a course: title, link, and the complete list of lessons",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			"required": []string{"course_name"},
		},
	}
}

func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) (string, []course.Source, error) {
	courseName := stringArg(args, "course_name")
	if courseName == "" {
		return "No course found matching ''", nil, nil
	}

	courses, err := t.index.ListCourses(ctx)
	if err != nil {
		return "", nil, fmt.Errorf("list courses: %w", err)
	}

	titles := make([]string, len(courses))
	byTitle := make(map[string]course.Metadata, len(courses))
	for i, c := range courses {
		titles[i] = c.Title
		byTitle[c.Title] = c
	}

	title, ok := Resolve(courseName, titles)
	if !ok {
		return fmt.Sprintf("No course found matching '%s'", courseName), nil, nil
	}
	meta := byTitle[title]

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", meta.Title)
	if meta.Link != "" {
		fmt.Fprintf(&b, "Link: %s\n", meta.Link)
	}
	if meta.Instructor != "" {
		fmt.Fprintf(&b, "Instructor: %s\n", meta.Instructor)
	}
	fmt.Fprintf(&b, "Lessons (%d):\n", len(meta.Lessons))
	for _, lesson := range meta.Lessons {
		fmt.Fprintf(&b, "  Lesson %d: %s\n", lesson.Number, lesson.Title)
	}

	source := course.Source{Label: meta.Title, Link: meta.Link}
	return b.String(), []course.Source{source}, nil
}
