// Package chunker splits course documents into overlapping text chunks.
package chunker

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/courseware-labs/ragtutor/internal/course"
)

var ErrInvalidSizing = errors.New("chunk overlap must be smaller than chunk size")

// Chunker produces fixed-window chunks that prefer sentence boundaries.
// Sizing is validated once at construction, never per call.
type Chunker struct {
	size    int
	overlap int
}

// New creates a Chunker. size is the maximum chunk length in runes and
// overlap is how many tail runes each chunk shares with its successor.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size=%d overlap=%d", ErrInvalidSizing, size, overlap)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Chunk splits a document into ordered chunks carrying the document's
// provenance. A document shorter than the chunk size yields exactly one
// chunk; an empty document yields none. ChunkIndex is dense from 0.
func (c *Chunker) Chunk(doc course.Document) []course.Chunk {
	if strings.TrimSpace(doc.Text) == "" {
		return nil
	}
	// All sizing arithmetic counts runes so a cut never lands inside a
	// multi-byte character.
	text := []rune(doc.Text)

	var chunks []course.Chunk
	emit := func(piece []rune) {
		chunks = append(chunks, course.Chunk{
			CourseID:     doc.CourseID,
			CourseTitle:  doc.CourseTitle,
			LessonNumber: doc.LessonNumber,
			LessonTitle:  doc.LessonTitle,
			LessonLink:   doc.LessonLink,
			ChunkIndex:   len(chunks),
			Text:         string(piece),
		})
	}

	start := 0
	for {
		if len(text)-start <= c.size {
			emit(text[start:])
			break
		}
		cut := c.breakPoint(text, start)
		emit(text[start:cut])

		next := cut - c.overlap
		if next <= start {
			// Overlap would prevent forward progress; skip it for this pair.
			next = cut
		}
		start = next
	}

	return chunks
}

// breakPoint returns the exclusive end, in runes, of the chunk beginning
// at start. It prefers the last sentence ending in the second half of the
// window, then the last word boundary, and hard-cuts at start+size
// otherwise. Byte offsets from the substring search are mapped back to
// rune positions; the separators themselves are ASCII.
func (c *Chunker) breakPoint(text []rune, start int) int {
	hard := start + c.size
	floor := start + c.size/2
	window := string(text[floor:hard])

	best := -1
	for _, sep := range []string{". ", "! ", "? ", "\n"} {
		if i := strings.LastIndex(window, sep); i >= 0 {
			if p := floor + utf8.RuneCountInString(window[:i]) + len(sep); p > best {
				best = p
			}
		}
	}
	if best > 0 {
		return best
	}
	if i := strings.LastIndex(window, " "); i >= 0 {
		return floor + utf8.RuneCountInString(window[:i]) + 1
	}
	return hard
}
