package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/courseware-labs/ragtutor/internal/course"
)

// Index is the slice of the vector index the tools need.
type Index interface {
	Search(ctx context.Context, query string, limit int, courseID string, lessonNumber int) ([]course.SearchResult, error)
	ListCourses(ctx context.Context) ([]course.Metadata, error)
	GetCourse(ctx context.Context, courseID string) (*course.Metadata, error)
}

// CourseSearchTool performs semantic search over course content with
// optional course and lesson filters.
type CourseSearchTool struct {
	index      Index
	maxResults int
}

// NewCourseSearchTool creates the content search tool. maxResults <= 0
// falls back to the index default.
func NewCourseSearchTool(index Index, maxResults int) *CourseSearchTool {
	return &CourseSearchTool{index: index, maxResults: maxResults}
}

func (t *CourseSearchTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "search_course_content",
		Description: "Search course materials with smart course name matching and lesson filtering",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"query": map[string]any{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]any{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]any{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 2, 3)",
				},
			},
			"required": []string{"query"},
		},
	}
}

// Execute resolves the optional course filter against the catalog, runs
// the search, and formats the hits with their provenance headers.
func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) (string, []course.Source, error) {
	query := stringArg(args, "query")
	courseName := stringArg(args, "course_name")
	lessonNumber := intArg(args, "lesson_number")

	courseID := ""
	courseTitle := ""
	if courseName != "" {
		title, id, ok, err := t.resolveCourse(ctx, courseName)
		if err != nil {
			return "", nil, err
		}
		if !ok {
			return fmt.Sprintf("No course found matching '%s'", courseName), nil, nil
		}
		courseID = id
		courseTitle = title
	}

	results, err := t.index.Search(ctx, query, t.maxResults, courseID, lessonNumber)
	if err != nil {
		return "", nil, fmt.Errorf("search course content: %w", err)
	}

	if len(results) == 0 {
		return emptyMessage(courseTitle, lessonNumber), nil, nil
	}

	var blocks []string
	sources := make([]course.Source, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", r.Source.Label, r.Chunk.Text))
		sources = append(sources, r.Source)
	}
	return strings.Join(blocks, "\n\n"), sources, nil
}

// resolveCourse fuzzy-matches a course name against catalog titles and
// returns the matched title and its course id.
func (t *CourseSearchTool) resolveCourse(ctx context.Context, name string) (string, string, bool, error) {
	courses, err := t.index.ListCourses(ctx)
	if err != nil {
		return "", "", false, fmt.Errorf("list courses: %w", err)
	}

	titles := make([]string, len(courses))
	byTitle := make(map[string]string, len(courses))
	for i, c := range courses {
		titles[i] = c.Title
		byTitle[c.Title] = c.CourseID
	}

	title, ok := Resolve(name, titles)
	if !ok {
		return "", "", false, nil
	}
	return title, byTitle[title], true, nil
}

// emptyMessage describes an empty result set including any active filters.
func emptyMessage(courseTitle string, lessonNumber int) string {
	msg := "No relevant content found"
	if courseTitle != "" {
		msg += fmt.Sprintf(" in course '%s'", courseTitle)
	}
	if lessonNumber >= 0 {
		msg += fmt.Sprintf(" in lesson %d", lessonNumber)
	}
	return msg + "."
}
