// Package store implements the vector index over Qdrant. Two collections
// back it: course_content holds chunk vectors with provenance payloads,
// course_catalog holds one unvectored record per course for existence
// checks and outline/citation lookups.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"

	"github.com/courseware-labs/ragtutor/internal/course"
)

const (
	// ContentCollection holds one point per chunk with a "content" vector.
	ContentCollection = "course_content"

	// CatalogCollection holds one unvectored point per course.
	CatalogCollection = "course_catalog"

	// DefaultMaxResults is the search result cap when the caller passes 0.
	DefaultMaxResults = 5
)

// Embedder is the pinned embedding function the index was built with.
// The same instance must serve both ingestion and query embedding.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	Dimension() int
}

// VectorIndex stores and searches course chunks and catalog records.
// Writes to a given course are serialized by a per-course mutex; reads
// and writes to different courses proceed concurrently.
type VectorIndex struct {
	client   *qdrant.Client
	embedder Embedder
	locks    sync.Map // courseID -> *sync.Mutex
	ready    bool
}

// New connects to Qdrant, verifies health with retry, and ensures both
// collections exist. The embedder is pinned for the index lifetime.
func New(host string, port int, embedder Embedder) (*VectorIndex, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("create qdrant client: %w", err)
	}

	v := &VectorIndex{
		client:   client,
		embedder: embedder,
	}

	ctx := context.Background()
	if err := v.healthCheckWithRetry(ctx); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	if err := v.EnsureCollections(ctx); err != nil {
		client.Close()
		return nil, err
	}

	return v, nil
}

// healthCheckWithRetry performs health check with exponential backoff.
// Initial interval 500ms, max interval 10s, max elapsed 30s.
func (v *VectorIndex) healthCheckWithRetry(ctx context.Context) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	return backoff.Retry(func() error {
		return v.Health(ctx)
	}, exponentialBackoff)
}

// Health performs a single health check against Qdrant.
func (v *VectorIndex) Health(ctx context.Context) error {
	result, err := v.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return fmt.Errorf("health check returned invalid response")
	}
	return nil
}

// EnsureCollections creates the content and catalog collections with
// payload indexes if they don't exist. Idempotent.
func (v *VectorIndex) EnsureCollections(ctx context.Context) error {
	existing, err := v.client.ListCollections(ctx)
	if err != nil {
		return fmt.Errorf("list collections: %w", err)
	}
	have := make(map[string]bool, len(existing))
	for _, name := range existing {
		have[name] = true
	}

	if !have[ContentCollection] {
		err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: ContentCollection,
			VectorsConfig: qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{
				"content": {
					Size:     uint64(v.embedder.Dimension()),
					Distance: qdrant.Distance_Cosine,
				},
			}),
		})
		if err != nil {
			return fmt.Errorf("create content collection: %w", err)
		}

		// Without payload indexes, course/lesson filtering is a full scan.
		_, err = v.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: ContentCollection,
			FieldName:      "course_id",
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create course_id index: %w", err)
		}
		_, err = v.client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: ContentCollection,
			FieldName:      "lesson_number",
			FieldType:      qdrant.FieldType_FieldTypeInteger.Enum(),
		})
		if err != nil {
			return fmt.Errorf("create lesson_number index: %w", err)
		}
	}

	if !have[CatalogCollection] {
		// Catalog records carry no vectors; the collection exists for
		// point lookups and scrolling only.
		err = v.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: CatalogCollection,
			VectorsConfig:  qdrant.NewVectorsConfigMap(map[string]*qdrant.VectorParams{}),
		})
		if err != nil {
			return fmt.Errorf("create catalog collection: %w", err)
		}
	}

	v.ready = true
	return nil
}

// Close closes the Qdrant client connection.
func (v *VectorIndex) Close() error {
	if v.client != nil {
		return v.client.Close()
	}
	return nil
}

// lockFor returns the write mutex for a course, creating it on first use.
func (v *VectorIndex) lockFor(courseID string) *sync.Mutex {
	mu, _ := v.locks.LoadOrStore(courseID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// chunkPointID derives a stable UUID for a chunk so re-ingestion upserts
// in place instead of accumulating duplicates.
func chunkPointID(courseID string, lessonNumber, chunkIndex int) string {
	key := fmt.Sprintf("chunk:%s:%d:%d", courseID, lessonNumber, chunkIndex)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(key)).String()
}

// catalogPointID derives the stable UUID of a course's catalog record.
func catalogPointID(courseID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("course:"+courseID)).String()
}

// HasCourse reports whether a catalog record exists for the course.
func (v *VectorIndex) HasCourse(ctx context.Context, courseID string) (bool, error) {
	result, err := v.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: CatalogCollection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(catalogPointID(courseID))},
	})
	if err != nil {
		return false, fmt.Errorf("get catalog record: %w", err)
	}
	return len(result) > 0, nil
}

// Add ingests a course: chunk vectors plus one catalog record. If the
// course is already present it is a no-op unless force is set, in which
// case the old points are removed before the new ones are written. The
// whole operation runs under the course's write lock, and the catalog
// record is written last so a half-finished add never looks ingested.
// Returns whether anything was written.
func (v *VectorIndex) Add(ctx context.Context, meta course.Metadata, chunks []course.Chunk, force bool) (bool, error) {
	mu := v.lockFor(meta.CourseID)
	mu.Lock()
	defer mu.Unlock()

	exists, err := v.HasCourse(ctx, meta.CourseID)
	if err != nil {
		return false, err
	}
	if exists && !force {
		return false, nil
	}

	// Embed everything up front: an embedding failure aborts before any
	// point is written, keeping the add all-or-nothing.
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = embedText(chunk)
	}
	vectors, err := v.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return false, fmt.Errorf("embed chunks: %w", err)
	}
	for i, vec := range vectors {
		if len(vec) != v.embedder.Dimension() {
			return false, fmt.Errorf("%w: chunk %d has %d dimensions, expected %d",
				ErrDimensionMismatch, i, len(vec), v.embedder.Dimension())
		}
	}

	if exists {
		if err := v.removeCourse(ctx, meta.CourseID); err != nil {
			return false, err
		}
	}

	if err := v.upsertChunks(ctx, chunks, vectors); err != nil {
		return false, err
	}
	if err := v.upsertCatalog(ctx, meta, len(chunks)); err != nil {
		return false, err
	}

	return true, nil
}

// removeCourse deletes the catalog record first, then all content points,
// so readers never see a course that is half old and half new.
func (v *VectorIndex) removeCourse(ctx context.Context, courseID string) error {
	_, err := v.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: CatalogCollection,
		Points:         qdrant.NewPointsSelector(qdrant.NewIDUUID(catalogPointID(courseID))),
		Wait:           qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("delete catalog record: %w", err)
	}

	_, err = v.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ContentCollection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{qdrant.NewMatch("course_id", courseID)},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		return fmt.Errorf("delete course chunks: %w", err)
	}
	return nil
}

// upsertChunks writes chunk points in batches of 100 with retry.
func (v *VectorIndex) upsertChunks(ctx context.Context, chunks []course.Chunk, vectors [][]float32) error {
	batchSize := 100
	for i := 0; i < len(chunks); i += batchSize {
		end := min(i+batchSize, len(chunks))

		points := make([]*qdrant.PointStruct, 0, end-i)
		for j := i; j < end; j++ {
			chunk := chunks[j]
			points = append(points, &qdrant.PointStruct{
				Id: qdrant.NewIDUUID(chunkPointID(chunk.CourseID, chunk.LessonNumber, chunk.ChunkIndex)),
				Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{
					"content": qdrant.NewVector(vectors[j]...),
				}),
				Payload: qdrant.NewValueMap(map[string]any{
					"course_id":     chunk.CourseID,
					"course_title":  chunk.CourseTitle,
					"lesson_number": chunk.LessonNumber,
					"lesson_title":  chunk.LessonTitle,
					"lesson_link":   chunk.LessonLink,
					"chunk_index":   chunk.ChunkIndex,
					"text":          chunk.Text,
				}),
			})
		}

		if err := v.upsertWithRetry(ctx, ContentCollection, points); err != nil {
			return fmt.Errorf("upsert chunk batch %d-%d: %w", i, end, err)
		}
	}
	return nil
}

// upsertCatalog writes the per-course catalog record.
func (v *VectorIndex) upsertCatalog(ctx context.Context, meta course.Metadata, chunkCount int) error {
	lessons, err := json.Marshal(meta.Lessons)
	if err != nil {
		return fmt.Errorf("encode lessons: %w", err)
	}

	ingestedAt := meta.IngestedAt
	if ingestedAt.IsZero() {
		ingestedAt = time.Now().UTC()
	}

	point := &qdrant.PointStruct{
		Id:      qdrant.NewIDUUID(catalogPointID(meta.CourseID)),
		Vectors: qdrant.NewVectorsMap(map[string]*qdrant.Vector{}),
		Payload: qdrant.NewValueMap(map[string]any{
			"course_id":   meta.CourseID,
			"title":       meta.Title,
			"link":        meta.Link,
			"instructor":  meta.Instructor,
			"lessons":     string(lessons),
			"chunk_count": chunkCount,
			"ingested_at": ingestedAt.Format(time.RFC3339),
		}),
	}

	return v.upsertWithRetry(ctx, CatalogCollection, []*qdrant.PointStruct{point})
}

// upsertWithRetry performs an upsert with exponential backoff retry.
func (v *VectorIndex) upsertWithRetry(ctx context.Context, collection string, points []*qdrant.PointStruct) error {
	exponentialBackoff := backoff.NewExponentialBackOff()
	exponentialBackoff.InitialInterval = 500 * time.Millisecond
	exponentialBackoff.MaxInterval = 10 * time.Second
	exponentialBackoff.MaxElapsedTime = 30 * time.Second

	operation := func() error {
		_, err := v.client.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: collection,
			Points:         points,
			Wait:           qdrant.PtrOf(true),
		})
		return err
	}

	return backoff.Retry(operation, backoff.WithContext(exponentialBackoff, ctx))
}

// Search embeds the query with the pinned embedder and returns the most
// similar chunks, optionally restricted to a course and lesson. An empty
// index yields an empty slice, not an error; an empty query is an error.
func (v *VectorIndex) Search(ctx context.Context, query string, limit int, courseID string, lessonNumber int) ([]course.SearchResult, error) {
	if !v.ready {
		return nil, ErrNotReady
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultMaxResults
	}

	vector, err := v.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var must []*qdrant.Condition
	if courseID != "" {
		must = append(must, qdrant.NewMatch("course_id", courseID))
	}
	if lessonNumber >= 0 {
		must = append(must, qdrant.NewMatchInt("lesson_number", int64(lessonNumber)))
	}
	var filter *qdrant.Filter
	if len(must) > 0 {
		filter = &qdrant.Filter{Must: must}
	}

	vectorName := "content"
	points, err := v.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ContentCollection,
		Query:          qdrant.NewQuery(vector...),
		Using:          &vectorName,
		Filter:         filter,
		Limit:          qdrant.PtrOf(uint64(limit)),
		WithPayload:    qdrant.NewWithPayload(true),
		WithVectors:    qdrant.NewWithVectors(false),
	})
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	results := make([]course.SearchResult, 0, len(points))
	for _, point := range points {
		payload := point.Payload
		chunk := course.Chunk{
			CourseID:     payload["course_id"].GetStringValue(),
			CourseTitle:  payload["course_title"].GetStringValue(),
			LessonNumber: int(payload["lesson_number"].GetIntegerValue()),
			LessonTitle:  payload["lesson_title"].GetStringValue(),
			LessonLink:   payload["lesson_link"].GetStringValue(),
			ChunkIndex:   int(payload["chunk_index"].GetIntegerValue()),
			Text:         payload["text"].GetStringValue(),
		}
		results = append(results, course.SearchResult{
			Chunk:  chunk,
			Score:  float64(point.Score),
			Source: sourceFor(chunk),
		})
	}

	return results, nil
}

// sourceFor builds the citation for a chunk from its provenance.
func sourceFor(chunk course.Chunk) course.Source {
	label := chunk.CourseTitle
	if chunk.LessonNumber >= 0 {
		label = fmt.Sprintf("%s - Lesson %d", chunk.CourseTitle, chunk.LessonNumber)
		if chunk.LessonTitle != "" {
			label += ": " + chunk.LessonTitle
		}
	}
	return course.Source{Label: label, Link: chunk.LessonLink}
}

// GetCourse retrieves a course's catalog record.
func (v *VectorIndex) GetCourse(ctx context.Context, courseID string) (*course.Metadata, error) {
	result, err := v.client.Get(ctx, &qdrant.GetPoints{
		CollectionName: CatalogCollection,
		Ids:            []*qdrant.PointId{qdrant.NewIDUUID(catalogPointID(courseID))},
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get catalog record: %w", err)
	}
	if len(result) == 0 {
		return nil, ErrCourseNotFound
	}
	meta := metadataFromPayload(result[0].Payload)
	return &meta, nil
}

// ListCourses returns all catalog records sorted by title.
func (v *VectorIndex) ListCourses(ctx context.Context) ([]course.Metadata, error) {
	var courses []course.Metadata
	var offset *qdrant.PointId
	batchSize := uint32(100)

	for {
		points, err := v.client.Scroll(ctx, &qdrant.ScrollPoints{
			CollectionName: CatalogCollection,
			Limit:          qdrant.PtrOf(batchSize),
			Offset:         offset,
			WithPayload:    qdrant.NewWithPayload(true),
		})
		if err != nil {
			return nil, fmt.Errorf("scroll catalog: %w", err)
		}

		for _, point := range points {
			courses = append(courses, metadataFromPayload(point.Payload))
		}

		if uint32(len(points)) < batchSize {
			break
		}
		offset = points[len(points)-1].Id
	}

	sort.Slice(courses, func(i, j int) bool { return courses[i].Title < courses[j].Title })
	return courses, nil
}

// CourseCount returns the number of ingested courses.
func (v *VectorIndex) CourseCount(ctx context.Context) (int, error) {
	count, err := v.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: CatalogCollection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count catalog: %w", err)
	}
	return int(count), nil
}

// ChunkCount returns the total number of content chunks in the index.
func (v *VectorIndex) ChunkCount(ctx context.Context) (int, error) {
	count, err := v.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: ContentCollection,
		Exact:          qdrant.PtrOf(true),
	})
	if err != nil {
		return 0, fmt.Errorf("count chunks: %w", err)
	}
	return int(count), nil
}

func metadataFromPayload(payload map[string]*qdrant.Value) course.Metadata {
	meta := course.Metadata{
		CourseID:   payload["course_id"].GetStringValue(),
		Title:      payload["title"].GetStringValue(),
		Link:       payload["link"].GetStringValue(),
		Instructor: payload["instructor"].GetStringValue(),
		ChunkCount: int(payload["chunk_count"].GetIntegerValue()),
	}

	if raw := payload["lessons"].GetStringValue(); raw != "" {
		// Best effort: a catalog record with a bad lessons payload still
		// lists, just without an outline.
		_ = json.Unmarshal([]byte(raw), &meta.Lessons)
	}

	if ts, err := time.Parse(time.RFC3339, payload["ingested_at"].GetStringValue()); err == nil {
		meta.IngestedAt = ts
	}

	return meta
}

// embedText prepends course and lesson context to chunk text before
// embedding, so retrieval works for queries that name the course or
// lesson rather than the content itself. The stored payload keeps the
// raw text.
func embedText(chunk course.Chunk) string {
	if chunk.LessonNumber >= 0 {
		return fmt.Sprintf("Course %s Lesson %d content: %s", chunk.CourseTitle, chunk.LessonNumber, chunk.Text)
	}
	return fmt.Sprintf("Course %s content: %s", chunk.CourseTitle, chunk.Text)
}
