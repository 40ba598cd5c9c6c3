package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func TestGetOrCreateIsLazyAndRefreshesLastActive(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 8, 15, 9, 0, 0, 0, time.UTC)}
	store := NewStore(WithClock(clock.Now))

	_, ok := store.Get("s1")
	assert.False(t, ok)

	first := store.GetOrCreate("s1")
	assert.Equal(t, "s1", first.ID)
	assert.Empty(t, first.History)
	assert.Equal(t, first.CreatedAt, first.Analytics.SessionStart)

	second := store.GetOrCreate("s1")
	assert.Equal(t, first.CreatedAt, second.CreatedAt)
	assert.True(t, second.Analytics.LastActive.After(first.Analytics.LastActive))
	assert.Equal(t, 1, store.Len())
}

func TestAppendTurnCreatesSessionAndCounts(t *testing.T) {
	store := NewStore()

	store.AppendTurn("s1", RoleUser, "hello", "greeting")
	store.AppendTurn("s1", RoleAssistant, "Hi there!", "greeting")
	store.AppendTurn("s1", RoleUser, "what is 2 + 2", "")

	sess, ok := store.Get("s1")
	require.True(t, ok)
	require.Len(t, sess.History, 3)
	assert.Equal(t, RoleUser, sess.History[0].Role)
	assert.Equal(t, "Hi there!", sess.History[1].Text)
	assert.NotEmpty(t, sess.History[2].ID)

	assert.Equal(t, 3, sess.Analytics.TotalMessages)
	assert.Equal(t, map[string]int{"greeting": 2}, sess.Analytics.CommandsUsed)
}

func TestSnapshotsAreIsolated(t *testing.T) {
	store := NewStore()
	store.AppendTurn("s1", RoleUser, "who is Elon Musk", "")

	snap := store.GetOrCreate("s1")
	snap.History[0].Text = "mutated"
	snap.Analytics.CommandsUsed["x"] = 99

	again, _ := store.Get("s1")
	assert.Equal(t, "who is Elon Musk", again.History[0].Text)
	assert.NotContains(t, again.Analytics.CommandsUsed, "x")
}

func TestLastUserText(t *testing.T) {
	store := NewStore()
	store.AppendTurn("s1", RoleUser, "what do we celebrate on August 15", "")
	store.AppendTurn("s1", RoleAssistant, "According to Wikipedia: ...", "")

	sess := store.GetOrCreate("s1")
	text, ok := sess.LastUserText()
	assert.True(t, ok)
	assert.Equal(t, "what do we celebrate on August 15", text)

	_, ok = store.GetOrCreate("empty").LastUserText()
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	store := NewStore()
	store.AppendTurn("s1", RoleUser, "hi", "greeting")

	assert.True(t, store.Clear("s1"))
	assert.False(t, store.Clear("s1"))

	_, ok := store.Get("s1")
	assert.False(t, ok)
}

func TestConcurrentAppendKeepsAnalyticsConsistent(t *testing.T) {
	defer goleak.VerifyNone(t)

	store := NewStore()
	const workers = 16
	const perWorker = 50
	labels := []string{"", "greeting", "time", "jokes"}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				sessionID := fmt.Sprintf("s%d", i%3)
				store.AppendTurn(sessionID, RoleUser, "msg", labels[(w+i)%len(labels)])
				store.GetOrCreate(sessionID)
			}
		}(w)
	}
	wg.Wait()

	total := 0
	for i := 0; i < 3; i++ {
		sess, ok := store.Get(fmt.Sprintf("s%d", i))
		require.True(t, ok)
		assert.Equal(t, len(sess.History), sess.Analytics.TotalMessages)

		labelled := 0
		for _, turn := range sess.History {
			if turn.Intent != "" {
				labelled++
			}
		}
		sum := 0
		for _, n := range sess.Analytics.CommandsUsed {
			sum += n
		}
		assert.Equal(t, labelled, sum)
		total += sess.Analytics.TotalMessages
	}
	assert.Equal(t, workers*perWorker, total)
}
