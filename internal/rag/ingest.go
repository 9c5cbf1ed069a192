package rag

import (
	"context"
	"fmt"
	"time"

	"github.com/courseware-labs/ragtutor/internal/course"
	"github.com/courseware-labs/ragtutor/internal/docparse"
	"github.com/courseware-labs/ragtutor/internal/source"
)

// IngestResult describes what one course ingestion did.
type IngestResult struct {
	CourseID    string
	CourseTitle string
	Added       bool
	ChunkCount  int
}

// FailedFile records a file that could not be ingested.
type FailedFile struct {
	Path  string
	Error string
}

// IngestReport summarizes a batch ingestion run.
type IngestReport struct {
	CoursesAdded   int
	CoursesSkipped int
	ChunksAdded    int
	Failed         []FailedFile
	Duration       time.Duration
}

// Ingest chunks a parsed course and writes it to the index. Courses
// already present are skipped unless force is set.
func (s *System) Ingest(ctx context.Context, parsed *docparse.ParsedCourse, force bool) (*IngestResult, error) {
	var chunks []course.Chunk
	for _, doc := range parsed.Documents {
		chunks = append(chunks, s.chunker.Chunk(doc)...)
	}

	meta := course.Metadata{
		CourseID:   parsed.Course.ID,
		Title:      parsed.Course.Title,
		Link:       parsed.Course.Link,
		Instructor: parsed.Course.Instructor,
		Lessons:    parsed.Course.Lessons,
		ChunkCount: len(chunks),
		IngestedAt: time.Now().UTC(),
	}

	added, err := s.index.Add(ctx, meta, chunks, force)
	if err != nil {
		return nil, fmt.Errorf("add course %s: %w", meta.CourseID, err)
	}

	if added {
		s.logger.Info("course ingested", "course", meta.CourseID, "chunks", len(chunks))
	} else {
		s.logger.Info("course already ingested, skipping", "course", meta.CourseID)
	}

	return &IngestResult{
		CourseID:    meta.CourseID,
		CourseTitle: meta.Title,
		Added:       added,
		ChunkCount:  len(chunks),
	}, nil
}

// IngestFiles parses and ingests a batch of course files. A file that
// fails to parse or ingest is recorded in the report and the rest of the
// batch continues.
func (s *System) IngestFiles(ctx context.Context, files []source.File, force bool) (*IngestReport, error) {
	start := time.Now()
	report := &IngestReport{}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		parsed, err := docparse.Parse(file.Path, file.Content)
		if err != nil {
			s.logger.Warn("parse failed", "file", file.Path, "error", err)
			report.Failed = append(report.Failed, FailedFile{Path: file.Path, Error: err.Error()})
			continue
		}

		result, err := s.Ingest(ctx, parsed, force)
		if err != nil {
			s.logger.Warn("ingest failed", "file", file.Path, "error", err)
			report.Failed = append(report.Failed, FailedFile{Path: file.Path, Error: err.Error()})
			continue
		}

		if result.Added {
			report.CoursesAdded++
			report.ChunksAdded += result.ChunkCount
		} else {
			report.CoursesSkipped++
		}
	}

	report.Duration = time.Since(start)
	s.logger.Info("ingestion complete",
		"added", report.CoursesAdded,
		"skipped", report.CoursesSkipped,
		"chunks", report.ChunksAdded,
		"failed", len(report.Failed),
		"duration", report.Duration)

	return report, nil
}
