package chunker

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/courseware-labs/ragtutor/internal/course"
)

func testDoc(text string) course.Document {
	return course.Document{
		CourseID:     "cs101",
		CourseTitle:  "Intro to Computer Science",
		LessonNumber: 1,
		LessonTitle:  "Getting Started",
		Text:         text,
	}
}

// TestNew_InvalidSizing verifies sizing is rejected at construction time.
func TestNew_InvalidSizing(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
		{"zero size", 0, 0},
		{"negative overlap", 100, -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.size, tc.overlap)
			if err == nil {
				t.Fatalf("New(%d, %d) succeeded, want error", tc.size, tc.overlap)
			}
			if !errors.Is(err, ErrInvalidSizing) {
				t.Errorf("error = %v, want ErrInvalidSizing", err)
			}
		})
	}
}

// TestChunk_ShortDocument verifies a document within the size limit yields
// exactly one chunk equal to the document text.
func TestChunk_ShortDocument(t *testing.T) {
	c, err := New(800, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := "Recursion is a technique where a function calls itself."
	chunks := c.Chunk(testDoc(text))

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != text {
		t.Errorf("Chunk text = %q, want %q", chunks[0].Text, text)
	}
	if chunks[0].ChunkIndex != 0 {
		t.Errorf("ChunkIndex = %d, want 0", chunks[0].ChunkIndex)
	}
	if chunks[0].CourseID != "cs101" || chunks[0].LessonNumber != 1 {
		t.Errorf("Chunk lost provenance: %+v", chunks[0])
	}
}

// TestChunk_EmptyDocument verifies an empty document yields zero chunks.
func TestChunk_EmptyDocument(t *testing.T) {
	c, err := New(800, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	if got := c.Chunk(testDoc("")); len(got) != 0 {
		t.Errorf("Expected 0 chunks for empty document, got %d", len(got))
	}
	if got := c.Chunk(testDoc("   \n  ")); len(got) != 0 {
		t.Errorf("Expected 0 chunks for whitespace document, got %d", len(got))
	}
}

// TestChunk_HardCutOverlap covers the 2000-character scenario: with no
// natural break points, chunks hard-cut at the size limit and adjacent
// chunks share exactly the overlap.
func TestChunk_HardCutOverlap(t *testing.T) {
	c, err := New(800, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := strings.Repeat("x", 2000)
	chunks := c.Chunk(testDoc(text))

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if chunk.ChunkIndex != i {
			t.Errorf("Chunk %d has index %d", i, chunk.ChunkIndex)
		}
		if len(chunk.Text) > 800 {
			t.Errorf("Chunk %d length %d exceeds size limit", i, len(chunk.Text))
		}
	}
	if len(chunks[0].Text) != 800 || len(chunks[1].Text) != 800 || len(chunks[2].Text) != 600 {
		t.Errorf("Chunk lengths = %d,%d,%d, want 800,800,600",
			len(chunks[0].Text), len(chunks[1].Text), len(chunks[2].Text))
	}
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1].Text
		if chunks[i].Text[:100] != prev[len(prev)-100:] {
			t.Errorf("Chunks %d and %d do not share a 100-character overlap", i-1, i)
		}
	}
}

// TestChunk_MultiByteRunes verifies sizing and overlap count runes, so
// multi-byte text is never cut mid-character.
func TestChunk_MultiByteRunes(t *testing.T) {
	c, err := New(800, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	text := strings.Repeat("学", 2000)
	chunks := c.Chunk(testDoc(text))

	if len(chunks) != 3 {
		t.Fatalf("Expected 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk.Text) {
			t.Errorf("Chunk %d is not valid UTF-8", i)
		}
		if n := utf8.RuneCountInString(chunk.Text); n > 800 {
			t.Errorf("Chunk %d has %d runes, exceeds size limit", i, n)
		}
	}

	lengths := []int{
		utf8.RuneCountInString(chunks[0].Text),
		utf8.RuneCountInString(chunks[1].Text),
		utf8.RuneCountInString(chunks[2].Text),
	}
	if lengths[0] != 800 || lengths[1] != 800 || lengths[2] != 600 {
		t.Errorf("Chunk rune lengths = %v, want [800 800 600]", lengths)
	}

	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		cur := []rune(chunks[i].Text)
		if string(cur[:100]) != string(prev[len(prev)-100:]) {
			t.Errorf("Chunks %d and %d do not share a 100-rune overlap", i-1, i)
		}
	}

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for _, chunk := range chunks[1:] {
		rebuilt.WriteString(string([]rune(chunk.Text)[100:]))
	}
	if rebuilt.String() != text {
		t.Errorf("Reconstructed text does not match original")
	}
}

// TestChunk_SentenceBoundary verifies chunks prefer to end at sentence
// boundaries when one exists within the window.
func TestChunk_SentenceBoundary(t *testing.T) {
	c, err := New(800, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var b strings.Builder
	for i := 0; b.Len() < 2500; i++ {
		b.WriteString("This sentence pads out the lesson transcript with content. ")
	}
	chunks := c.Chunk(testDoc(b.String()))

	if len(chunks) < 3 {
		t.Fatalf("Expected at least 3 chunks, got %d", len(chunks))
	}
	for i, chunk := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(chunk.Text, ". ") {
			t.Errorf("Chunk %d does not end at a sentence boundary: %q", i, chunk.Text[len(chunk.Text)-20:])
		}
	}
}

// TestChunk_Reconstruction verifies that stripping each chunk's leading
// overlap and concatenating reproduces the original document.
func TestChunk_Reconstruction(t *testing.T) {
	c, err := New(800, 100)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var b strings.Builder
	for i := 0; b.Len() < 5000; i++ {
		b.WriteString("Arrays store elements contiguously in memory. Linked lists trade locality for cheap insertion. ")
	}
	text := b.String()
	chunks := c.Chunk(testDoc(text))

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks, got %d", len(chunks))
	}

	var rebuilt strings.Builder
	rebuilt.WriteString(chunks[0].Text)
	for _, chunk := range chunks[1:] {
		rebuilt.WriteString(chunk.Text[100:])
	}
	if rebuilt.String() != text {
		t.Errorf("Reconstructed text does not match original (lengths %d vs %d)",
			rebuilt.Len(), len(text))
	}
}
