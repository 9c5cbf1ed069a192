package session

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_AppendAndHistory(t *testing.T) {
	store := NewStore(2)
	id := NewSessionID()

	store.Append(id, "user", "What is RAG?")
	store.Append(id, "assistant", "Retrieval-augmented generation.")

	history := store.History(id)
	require.Len(t, history, 2)
	assert.Equal(t, Turn{Role: "user", Content: "What is RAG?"}, history[0])
	assert.Equal(t, Turn{Role: "assistant", Content: "Retrieval-augmented generation."}, history[1])
}

func TestStore_BoundsHistory(t *testing.T) {
	store := NewStore(2)
	id := "bounded"

	for i := 1; i <= 5; i++ {
		store.Append(id, "user", fmt.Sprintf("question %d", i))
		store.Append(id, "assistant", fmt.Sprintf("answer %d", i))
	}

	history := store.History(id)
	require.Len(t, history, 4, "only the last two exchanges are retained")
	assert.Equal(t, "question 4", history[0].Content)
	assert.Equal(t, "answer 5", history[3].Content)
}

func TestStore_UnknownSession(t *testing.T) {
	store := NewStore(2)
	assert.Empty(t, store.History("never-seen"))
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(2)
	store.Append("s1", "user", "hello")
	store.Clear("s1")
	assert.Empty(t, store.History("s1"))
}

func TestStore_IndependentSessions(t *testing.T) {
	store := NewStore(2)
	store.Append("a", "user", "from a")
	store.Append("b", "user", "from b")

	require.Len(t, store.History("a"), 1)
	assert.Equal(t, "from a", store.History("a")[0].Content)
	assert.Equal(t, "from b", store.History("b")[0].Content)
}

func TestStore_HistoryReturnsCopy(t *testing.T) {
	store := NewStore(2)
	store.Append("s", "user", "original")

	history := store.History("s")
	history[0].Content = "mutated"

	assert.Equal(t, "original", store.History("s")[0].Content)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(2)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("session-%d", n%4)
			store.Append(id, "user", "q")
			store.History(id)
		}(i)
	}
	wg.Wait()
}

func TestNewSessionID_Unique(t *testing.T) {
	assert.NotEqual(t, NewSessionID(), NewSessionID())
}
