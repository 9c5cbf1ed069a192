package docparse

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"go.abhg.dev/goldmark/toc"

	"github.com/courseware-labs/ragtutor/internal/course"
)

// ParseMarkdown parses a markdown course document. The first H1 is the
// course title and each H2 under it becomes a numbered lesson. A document
// with no headings is treated as a single un-numbered lesson document.
func ParseMarkdown(path, content string) (*ParsedCourse, error) {
	source := []byte(content)
	md := goldmark.New(goldmark.WithParserOptions(parser.WithAutoHeadingID()))
	docNode := md.Parser().Parse(text.NewReader(source))

	tree, err := toc.Inspect(docNode, source,
		toc.MinDepth(1),
		toc.MaxDepth(2),
		toc.Compact(true),
	)
	if err != nil {
		return nil, fmt.Errorf("inspect headings: %w", err)
	}

	title := titleFromPath(path)
	var lessonItems toc.Items
	if len(tree.Items) > 0 && len(tree.Items[0].Title) > 0 {
		title = string(tree.Items[0].Title)
		lessonItems = tree.Items[0].Items
	}

	parsed := &ParsedCourse{
		Course: course.Course{ID: Slug(title), Title: title},
	}

	// No headings at all: the whole file is one document.
	if len(tree.Items) == 0 {
		parsed.Documents = append(parsed.Documents, course.Document{
			CourseID:     parsed.Course.ID,
			CourseTitle:  parsed.Course.Title,
			LessonNumber: course.NoLesson,
			Text:         strings.TrimSpace(content),
		})
		return parsed, nil
	}

	// Preamble: content between the H1 and the first lesson heading.
	if h1 := findHeadingByID(docNode, string(tree.Items[0].ID)); h1 != nil && h1.Lines().Len() > 0 {
		preamble := sectionText(source, docNode, h1, 1)
		// The H1 section spans the whole document; stop at the first H2.
		if len(lessonItems) > 0 {
			if first := findHeadingByID(docNode, string(lessonItems[0].ID)); first != nil && first.Lines().Len() > 0 {
				start := h1.Lines().At(h1.Lines().Len() - 1).Stop
				preamble = trimSection(string(source[start:first.Lines().At(0).Start]))
			}
		}
		if preamble != "" {
			parsed.Documents = append(parsed.Documents, course.Document{
				CourseID:     parsed.Course.ID,
				CourseTitle:  parsed.Course.Title,
				LessonNumber: course.NoLesson,
				Text:         preamble,
			})
		}
	}

	for i, item := range lessonItems {
		node := findHeadingByID(docNode, string(item.ID))
		if node == nil {
			continue
		}
		number := i + 1
		lessonTitle := string(item.Title)
		parsed.Course.Lessons = append(parsed.Course.Lessons, course.Lesson{
			Number: number,
			Title:  lessonTitle,
		})

		body := sectionText(source, docNode, node, 2)
		if body == "" {
			continue
		}
		parsed.Documents = append(parsed.Documents, course.Document{
			CourseID:     parsed.Course.ID,
			CourseTitle:  parsed.Course.Title,
			LessonNumber: number,
			LessonTitle:  lessonTitle,
			Text:         body,
		})
	}

	if len(parsed.Documents) == 0 {
		return nil, ErrEmptyFile
	}
	return parsed, nil
}

// findHeadingByID locates a heading node by its auto-generated ID.
func findHeadingByID(node ast.Node, id string) ast.Node {
	var found ast.Node
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering && n.Kind() == ast.KindHeading {
			headingID, ok := n.AttributeString("id")
			if ok && string(headingID.([]byte)) == id {
				found = n
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// sectionText extracts the text between a heading and the next heading at
// the same or a higher level, excluding the heading line itself.
func sectionText(source []byte, root ast.Node, heading ast.Node, level int) string {
	if heading.Lines().Len() == 0 {
		return ""
	}
	start := heading.Lines().At(heading.Lines().Len() - 1).Stop

	end := len(source)
	foundCurrent := false
	ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Kind() != ast.KindHeading {
			return ast.WalkContinue, nil
		}
		if !foundCurrent {
			if n == heading {
				foundCurrent = true
			}
			return ast.WalkContinue, nil
		}
		if n.(*ast.Heading).Level <= level && n.Lines().Len() > 0 {
			end = n.Lines().At(0).Start
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})

	return trimSection(string(source[start:end]))
}

// trimSection strips whitespace plus any dangling ATX markers left over
// from slicing up to the next heading's text segment.
func trimSection(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimRight(s, "#")
	return strings.TrimSpace(s)
}
