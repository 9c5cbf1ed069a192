// Package docparse turns raw course files into structured courses and
// lesson documents. Two formats are supported: the plain-text course
// script format and markdown (headings become lessons).
package docparse

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/courseware-labs/ragtutor/internal/course"
)

var ErrEmptyFile = errors.New("course file is empty")

// ParsedCourse is the result of parsing one course file: the course record
// plus one document per lesson (and an optional un-numbered preamble).
type ParsedCourse struct {
	Course    course.Course
	Documents []course.Document
}

var lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// Parse dispatches on file extension: .md files are parsed as markdown,
// everything else as a course script.
func Parse(path, content string) (*ParsedCourse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}
	if strings.EqualFold(filepath.Ext(path), ".md") {
		return ParseMarkdown(path, content)
	}
	return ParseScript(path, content)
}

// ParseScript parses the course script format:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<lesson text...>
//
// Header lines are optional; a missing title falls back to the file name.
// Text before the first lesson marker becomes an un-numbered document.
func ParseScript(path, content string) (*ParsedCourse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyFile
	}

	lines := strings.Split(content, "\n")
	c := course.Course{}

	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch {
		case strings.HasPrefix(line, "Course Title:"):
			c.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
		case strings.HasPrefix(line, "Course Link:"):
			c.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		case strings.HasPrefix(line, "Course Instructor:"):
			c.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		case line == "":
			continue
		default:
			// First non-header line, body starts here.
			goto body
		}
	}
body:
	if c.Title == "" {
		c.Title = titleFromPath(path)
	}
	c.ID = Slug(c.Title)

	parsed := &ParsedCourse{Course: c}

	var (
		curNumber = course.NoLesson
		curTitle  string
		curLink   string
		curBody   []string
	)
	flush := func() {
		text := strings.TrimSpace(strings.Join(curBody, "\n"))
		if text == "" {
			return
		}
		parsed.Documents = append(parsed.Documents, course.Document{
			CourseID:     parsed.Course.ID,
			CourseTitle:  parsed.Course.Title,
			LessonNumber: curNumber,
			LessonTitle:  curTitle,
			LessonLink:   curLink,
			Text:         text,
		})
	}

	for ; i < len(lines); i++ {
		line := lines[i]
		if m := lessonMarker.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			flush()
			curNumber = atoiSafe(m[1])
			curTitle = strings.TrimSpace(m[2])
			curLink = ""
			curBody = nil

			// Optional link line directly under the lesson marker.
			if i+1 < len(lines) {
				next := strings.TrimSpace(lines[i+1])
				if strings.HasPrefix(next, "Lesson Link:") {
					curLink = strings.TrimSpace(strings.TrimPrefix(next, "Lesson Link:"))
					i++
				}
			}
			parsed.Course.Lessons = append(parsed.Course.Lessons, course.Lesson{
				Number: curNumber,
				Title:  curTitle,
				Link:   curLink,
			})
			continue
		}
		curBody = append(curBody, line)
	}
	flush()

	if len(parsed.Documents) == 0 {
		return nil, ErrEmptyFile
	}
	return parsed, nil
}

// Slug derives a stable course identifier from a title.
// "Intro to ML!" -> "intro-to-ml".
func Slug(title string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func atoiSafe(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
