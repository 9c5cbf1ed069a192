package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/courseware-labs/ragtutor/internal/course"
)

func TestChunkPointID_Stable(t *testing.T) {
	a := chunkPointID("cs101", 1, 0)
	b := chunkPointID("cs101", 1, 0)
	assert.Equal(t, a, b, "same chunk must map to the same point id")

	assert.NotEqual(t, a, chunkPointID("cs101", 1, 1))
	assert.NotEqual(t, a, chunkPointID("cs101", 2, 0))
	assert.NotEqual(t, a, chunkPointID("cs102", 1, 0))
	assert.NotEqual(t, chunkPointID("cs101", 0, 0), catalogPointID("cs101"))
}

func TestSourceFor(t *testing.T) {
	chunk := course.Chunk{
		CourseTitle:  "Intro to Databases",
		LessonNumber: 2,
		LessonTitle:  "Indexes",
		LessonLink:   "https://example.com/db/2",
	}
	src := sourceFor(chunk)
	assert.Equal(t, "Intro to Databases - Lesson 2: Indexes", src.Label)
	assert.Equal(t, "https://example.com/db/2", src.Link)

	noLesson := sourceFor(course.Chunk{CourseTitle: "Intro to Databases", LessonNumber: course.NoLesson})
	assert.Equal(t, "Intro to Databases", noLesson.Label)
	assert.Empty(t, noLesson.Link)
}

func TestEmbedText_AddsContext(t *testing.T) {
	chunk := course.Chunk{CourseTitle: "Intro to ML", LessonNumber: 3, Text: "Gradient descent minimizes loss."}
	assert.Equal(t, "Course Intro to ML Lesson 3 content: Gradient descent minimizes loss.", embedText(chunk))

	preamble := course.Chunk{CourseTitle: "Intro to ML", LessonNumber: course.NoLesson, Text: "Welcome."}
	assert.Equal(t, "Course Intro to ML content: Welcome.", embedText(preamble))
}

func TestMetadataPayloadRoundTrip(t *testing.T) {
	lessons := []course.Lesson{
		{Number: 0, Title: "Welcome", Link: "https://example.com/0"},
		{Number: 1, Title: "Basics"},
	}
	encoded, err := json.Marshal(lessons)
	require.NoError(t, err)

	ingestedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	payload := qdrant.NewValueMap(map[string]any{
		"course_id":   "intro-to-databases",
		"title":       "Intro to Databases",
		"link":        "https://example.com/db",
		"instructor":  "Ada Lopez",
		"lessons":     string(encoded),
		"chunk_count": 12,
		"ingested_at": ingestedAt.Format(time.RFC3339),
	})

	meta := metadataFromPayload(payload)
	assert.Equal(t, "intro-to-databases", meta.CourseID)
	assert.Equal(t, "Intro to Databases", meta.Title)
	assert.Equal(t, "Ada Lopez", meta.Instructor)
	assert.Equal(t, 12, meta.ChunkCount)
	assert.Equal(t, lessons, meta.Lessons)
	assert.True(t, meta.IngestedAt.Equal(ingestedAt))
}
