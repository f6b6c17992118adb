package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDeliverer treats the ids in online as reachable and records every
// live delivery.
type fakeDeliverer struct {
	mu        sync.Mutex
	online    map[string]bool
	delivered map[string][]Notification
}

func newFakeDeliverer(online ...string) *fakeDeliverer {
	d := &fakeDeliverer{
		online:    make(map[string]bool),
		delivered: make(map[string][]Notification),
	}
	for _, id := range online {
		d.online[id] = true
	}
	return d
}

func (d *fakeDeliverer) Deliver(userID string, n Notification) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.online[userID] {
		return false
	}
	d.delivered[userID] = append(d.delivered[userID], n)
	return true
}

func TestNotify_NeverToSelf(t *testing.T) {
	deliverer := newFakeDeliverer("user-1")
	router := NewRouter(deliverer)

	router.Notify("user-1", "user-1", Following("ann", 1))

	assert.Empty(t, deliverer.delivered["user-1"])
	assert.Empty(t, router.Pending("user-1"))
}

func TestNotify_OnlineDeliveredNotQueued(t *testing.T) {
	deliverer := newFakeDeliverer("user-2")
	router := NewRouter(deliverer)

	router.Notify("user-2", "user-1", Following("ann", 1))

	require.Len(t, deliverer.delivered["user-2"], 1)
	assert.Empty(t, router.Pending("user-2"))
}

func TestNotify_OfflineQueuedNewestFirst(t *testing.T) {
	router := NewRouter(newFakeDeliverer())

	router.Notify("user-2", "user-1", PostLiked("ann", 1, "post-1"))
	router.Notify("user-2", "user-1", Commented("ann", 2, "post-1"))

	pending := router.Pending("user-2")
	require.Len(t, pending, 2)
	assert.Equal(t, KindComment, pending[0].Type)
	assert.Equal(t, KindPostLiked, pending[1].Type)
}

func TestDrainAndClear_ExactlyOnce(t *testing.T) {
	router := NewRouter(newFakeDeliverer())

	router.Notify("user-2", "user-1", Following("ann", 1))

	drained := router.DrainAndClear("user-2")
	require.Len(t, drained, 1)
	assert.Equal(t, KindFollowing, drained[0].Type)

	assert.Empty(t, router.DrainAndClear("user-2"))
	assert.Empty(t, router.Pending("user-2"))
}

func TestNotify_FailedLiveDeliveryIsQueued(t *testing.T) {
	// Nobody online: every delivery attempt fails and must be queued.
	router := NewRouter(newFakeDeliverer())

	router.Notify("user-2", "user-1", NewPost("ann", 1, "post-1"))

	pending := router.Pending("user-2")
	require.Len(t, pending, 1)
	assert.Equal(t, KindNewPost, pending[0].Type)
}

func TestNotify_ConcurrentEnqueueAndDrain(t *testing.T) {
	router := NewRouter(newFakeDeliverer())

	const total = 64
	var wg sync.WaitGroup
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(i int) {
			defer wg.Done()
			router.Notify("user-2", "user-1", PostLiked("ann", int64(i), "post-1"))
		}(i)
	}
	wg.Wait()

	drained := router.DrainAndClear("user-2")
	assert.Len(t, drained, total)
	assert.Empty(t, router.Pending("user-2"))
}
