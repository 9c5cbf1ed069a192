// Package course defines the domain model shared across ingestion and retrieval.
package course

import "time"

// Lesson is a single lesson entry within a course.
type Lesson struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Link   string `json:"link,omitempty"`
}

// Course describes one course as parsed from a course document.
type Course struct {
	ID         string // Stable identifier, slug of the title
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}

// NoLesson marks a document or chunk that is not tied to a specific lesson.
const NoLesson = -1

// Document is the text of one lesson (or course preamble) with provenance.
// Produced by the docparse package, consumed by the chunker. Immutable once read.
type Document struct {
	CourseID     string
	CourseTitle  string
	LessonNumber int // NoLesson when the text is not lesson-scoped
	LessonTitle  string
	LessonLink   string
	Text         string
}

// Chunk is a bounded slice of document text, the unit of embedding and retrieval.
type Chunk struct {
	CourseID     string
	CourseTitle  string
	LessonNumber int
	LessonTitle  string
	LessonLink   string
	ChunkIndex   int // Dense 0-based position within the source document
	Text         string
}

// Metadata is the per-course catalog record. At most one exists per CourseID.
type Metadata struct {
	CourseID   string
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
	ChunkCount int
	IngestedAt time.Time
}

// SearchResult is a retrieved chunk with its similarity score and citation.
type SearchResult struct {
	Chunk  Chunk
	Score  float64 // Higher is more relevant
	Source Source
}

// Source is a human-readable citation attached to an answer.
type Source struct {
	Label string `json:"label"`
	Link  string `json:"link,omitempty"`
}
