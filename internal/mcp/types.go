// Package mcp exposes the course assistant over the Model Context
// Protocol.
package mcp

import "time"

// AskInput defines the input parameters for the answer_question tool.
type AskInput struct {
	// Query is the question about course materials.
	Query string `json:"query" jsonschema:"required,description=The question to answer from the ingested course materials"`
	// SessionID continues a previous conversation; omit to start fresh.
	SessionID string `json:"session_id,omitempty" jsonschema:"description=Session id from a previous answer to keep conversation context"`
}

// AskOutput contains the generated answer.
type AskOutput struct {
	// Answer is the generated answer text.
	Answer string `json:"answer"`
	// Sources are the course materials that backed the answer.
	Sources []SourceRef `json:"sources"`
	// SessionID identifies the conversation for follow-up questions.
	SessionID string `json:"session_id"`
	// Truncated indicates the retrieval budget ran out before the model
	// finished gathering context.
	Truncated bool `json:"truncated,omitempty"`
}

// SourceRef is a citation for answer content.
type SourceRef struct {
	// Label names the course and lesson, e.g. "Intro to ML - Lesson 1: Basics".
	Label string `json:"label"`
	// Link is the lesson URL when known.
	Link string `json:"link,omitempty"`
}

// ListCoursesInput defines the input for the list_courses tool.
// This tool takes no parameters.
type ListCoursesInput struct {
	// No input parameters required
}

// ListCoursesOutput contains the course catalog.
type ListCoursesOutput struct {
	// Courses is all ingested courses.
	Courses []CourseInfo `json:"courses"`
	// Count is the total number of courses.
	Count int `json:"count"`
}

// CourseInfo summarizes one catalog record.
type CourseInfo struct {
	// Title is the course title.
	Title string `json:"title"`
	// Link is the course URL.
	Link string `json:"link,omitempty"`
	// Instructor is the course instructor.
	Instructor string `json:"instructor,omitempty"`
	// LessonCount is the number of lessons in the course.
	LessonCount int `json:"lesson_count"`
	// IngestedAt is when the course was added to the index.
	IngestedAt time.Time `json:"ingested_at"`
}

// StatusInput defines the input for the get_index_status tool.
// This tool takes no parameters.
type StatusInput struct {
	// No input parameters required
}

// StatusOutput contains index statistics.
type StatusOutput struct {
	// TotalCourses is the number of ingested courses.
	TotalCourses int `json:"total_courses"`
	// TotalChunks is the number of content chunks in the index.
	TotalChunks int `json:"total_chunks"`
	// CourseTitles lists all ingested course titles.
	CourseTitles []string `json:"course_titles"`
}
