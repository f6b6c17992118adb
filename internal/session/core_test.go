package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fylora/bloggle/internal/feed"
)

func newTestCore() *Core {
	return NewCore(feed.NewContentStore(), feed.NewSocialGraph(), NewRegistry())
}

// connectUser registers a user with a fresh fake channel and clears the
// replay messages so tests only see what happens next.
func connectUser(t *testing.T, core *Core, userID, username string) (*ActiveUser, *fakeChannel) {
	t.Helper()
	ch := newFakeChannel()
	user, err := core.Connect(userID, username, ch)
	require.NoError(t, err)
	ch.mu.Lock()
	ch.sent = nil
	ch.mu.Unlock()
	return user, ch
}

func TestConnect_ReplaysFeed(t *testing.T) {
	core := newTestCore()

	poster, _ := connectUser(t, core, "user-1", "ann")
	core.Post(poster, "hello world")

	ch := newFakeChannel()
	_, err := core.Connect("user-2", "ben", ch)
	require.NoError(t, err)

	messages := ch.messages(t)
	require.NotEmpty(t, messages)
	assert.Equal(t, "posts", messages[0]["type"])
	posts := messages[0]["posts"].([]any)
	require.Len(t, posts, 1)
}

func TestConnect_DuplicateRejected(t *testing.T) {
	core := newTestCore()
	_, first := connectUser(t, core, "user-1", "ann")

	_, err := core.Connect("user-1", "ann", newFakeChannel())
	assert.ErrorIs(t, err, ErrAlreadyConnected)
	assert.False(t, first.isClosed())
	assert.True(t, core.Registry().IsOnline("user-1"))
}

func TestPost_EmptyBodyRejected(t *testing.T) {
	core := newTestCore()
	user, ch := connectUser(t, core, "user-1", "ann")

	core.Post(user, "   ")

	last := ch.lastMessage(t)
	assert.Equal(t, "error", last["type"])

	core.GetPosts(user)
	last = ch.lastMessage(t)
	require.Equal(t, "posts", last["type"])
	assert.Empty(t, last["posts"])
}

func TestPost_BroadcastsFeedToAllSessions(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")
	_, otherCh := connectUser(t, core, "user-2", "ben")

	core.Post(poster, "hello world")

	for _, ch := range []*fakeChannel{posterCh, otherCh} {
		last := ch.lastMessage(t)
		assert.Equal(t, "posts", last["type"])
		posts := last["posts"].([]any)
		require.Len(t, posts, 1)
	}
}

func TestPost_NotifiesFollowersOffline(t *testing.T) {
	core := newTestCore()
	poster, _ := connectUser(t, core, "user-1", "ann")

	// ben follows ann, then goes offline.
	followerCh := newFakeChannel()
	follower, err := core.Connect("user-2", "ben", followerCh)
	require.NoError(t, err)
	core.Follow(follower, "user-1")
	require.NoError(t, core.Disconnect(follower))

	core.Post(poster, "hello world")

	// ben reconnects: the queued NewPost arrives exactly once, via drain.
	reconnectCh := newFakeChannel()
	_, err = core.Connect("user-2", "ben", reconnectCh)
	require.NoError(t, err)

	messages := reconnectCh.messages(t)
	require.Len(t, messages, 2)
	assert.Equal(t, "posts", messages[0]["type"])
	assert.Equal(t, "notifications", messages[1]["type"])
	notifications := messages[1]["notifications"].([]any)
	require.Len(t, notifications, 1)
	first := notifications[0].(map[string]any)
	assert.Equal(t, "new_post", first["type"])
	assert.Equal(t, "ann", first["by"])
}

func TestComment_BroadcastsUpdatedPost(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")
	commenter, _ := connectUser(t, core, "user-2", "ben")

	core.Post(poster, "hello world")
	postID := postIDFromFeed(t, posterCh)

	core.Comment(commenter, postID, "nice post")

	last := posterCh.lastMessage(t)
	require.Equal(t, "post", last["type"])
	post := last["post"].(map[string]any)
	comments := post["comments"].([]any)
	require.Len(t, comments, 1)
}

func TestComment_NotifiesPostAuthorLive(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")
	commenter, _ := connectUser(t, core, "user-2", "ben")

	core.Post(poster, "hello world")
	postID := postIDFromFeed(t, posterCh)

	core.Comment(commenter, postID, "nice post")

	var sawNotification bool
	for _, message := range posterCh.messages(t) {
		if message["type"] == "notifications" {
			notifications := message["notifications"].([]any)
			require.Len(t, notifications, 1)
			assert.Equal(t, "comment", notifications[0].(map[string]any)["type"])
			sawNotification = true
		}
	}
	assert.True(t, sawNotification)
}

func TestLikePost_TogglesAndAdjustsAggregate(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")
	liker, likerCh := connectUser(t, core, "user-2", "ben")

	core.Post(poster, "hello world")
	postID := postIDFromFeed(t, posterCh)

	core.LikePost(liker, postID)

	core.GetAccount(liker, "user-1")
	account := likerCh.lastMessage(t)["account"].(map[string]any)
	assert.EqualValues(t, 1, account["totalLikes"])

	core.LikePost(liker, postID)

	core.GetAccount(liker, "user-1")
	account = likerCh.lastMessage(t)["account"].(map[string]any)
	assert.EqualValues(t, 0, account["totalLikes"])
}

func TestLikePost_NotifiesOnlyOnLikedTransition(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")
	liker, _ := connectUser(t, core, "user-2", "ben")

	core.Post(poster, "hello world")
	postID := postIDFromFeed(t, posterCh)
	require.NoError(t, core.Disconnect(poster))

	core.LikePost(liker, postID) // like: queued for offline ann
	core.LikePost(liker, postID) // unlike: nothing

	reconnectCh := newFakeChannel()
	_, err := core.Connect("user-1", "ann", reconnectCh)
	require.NoError(t, err)

	messages := reconnectCh.messages(t)
	require.Len(t, messages, 2)
	notifications := messages[1]["notifications"].([]any)
	require.Len(t, notifications, 1)
	assert.Equal(t, "post_liked", notifications[0].(map[string]any)["type"])
}

func TestLikePost_SelfLikeDoesNotNotify(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")

	core.Post(poster, "hello world")
	postID := postIDFromFeed(t, posterCh)

	core.LikePost(poster, postID)

	for _, message := range posterCh.messages(t) {
		assert.NotEqual(t, "notifications", message["type"])
	}
}

func TestLikeComment_AdjustsCommentAuthorAggregate(t *testing.T) {
	core := newTestCore()
	poster, posterCh := connectUser(t, core, "user-1", "ann")
	commenter, _ := connectUser(t, core, "user-2", "ben")
	liker, likerCh := connectUser(t, core, "user-3", "cam")

	core.Post(poster, "hello world")
	postID := postIDFromFeed(t, posterCh)
	core.Comment(commenter, postID, "nice post")

	// Find the comment id in the broadcast post.
	last := posterCh.lastMessage(t)
	post := last["post"].(map[string]any)
	commentID := post["comments"].([]any)[0].(map[string]any)["commentId"].(string)

	core.LikeComment(liker, commentID)

	// The comment author's aggregate moves, not the post author's.
	core.GetAccount(liker, "user-2")
	account := likerCh.lastMessage(t)["account"].(map[string]any)
	assert.EqualValues(t, 1, account["totalLikes"])

	core.GetAccount(liker, "user-1")
	account = likerCh.lastMessage(t)["account"].(map[string]any)
	assert.EqualValues(t, 0, account["totalLikes"])
}

func TestFollow_SelfRejected(t *testing.T) {
	core := newTestCore()
	user, ch := connectUser(t, core, "user-1", "ann")

	core.Follow(user, "user-1")

	last := ch.lastMessage(t)
	assert.Equal(t, "error", last["type"])
}

func TestFollow_NotifiesTargetLiveOnFollowOnly(t *testing.T) {
	core := newTestCore()
	_, targetCh := connectUser(t, core, "user-1", "ann")
	follower, _ := connectUser(t, core, "user-2", "ben")

	core.Follow(follower, "user-1")

	last := targetCh.lastMessage(t)
	require.Equal(t, "notifications", last["type"])
	notifications := last["notifications"].([]any)
	require.Len(t, notifications, 1)
	assert.Equal(t, "following", notifications[0].(map[string]any)["type"])

	before := len(targetCh.messages(t))
	core.Follow(follower, "user-1") // unfollow: target hears nothing
	assert.Len(t, targetCh.messages(t), before)
}

func TestGetNotifications_EmptyMailbox(t *testing.T) {
	core := newTestCore()
	user, ch := connectUser(t, core, "user-1", "ann")

	core.GetNotifications(user)

	last := ch.lastMessage(t)
	assert.Equal(t, "error", last["type"])
	assert.Equal(t, "No notifications yet", last["error"])
}

func TestSearchAccounts_EmptyResultIsDistinct(t *testing.T) {
	core := newTestCore()
	user, ch := connectUser(t, core, "user-1", "ann")

	core.SearchAccounts(user, "nobody")
	assert.Equal(t, "error", ch.lastMessage(t)["type"])

	core.SearchAccounts(user, "ann")
	last := ch.lastMessage(t)
	require.Equal(t, "accounts", last["type"])
	accounts := last["accounts"].([]any)
	require.Len(t, accounts, 1)
}

func TestHandleMessage_MalformedKeepsSessionOpen(t *testing.T) {
	core := newTestCore()
	user, ch := connectUser(t, core, "user-1", "ann")

	core.HandleMessage(user, []byte(`{"type":"selfdestruct"}`))
	assert.Equal(t, "error", ch.lastMessage(t)["type"])
	assert.True(t, core.Registry().IsOnline("user-1"))

	// The session keeps working.
	core.HandleMessage(user, []byte(`{"type":"posts"}`))
	assert.Equal(t, "posts", ch.lastMessage(t)["type"])
}

func TestHandleMessage_DispatchesCommands(t *testing.T) {
	core := newTestCore()
	user, ch := connectUser(t, core, "user-1", "ann")

	core.HandleMessage(user, []byte(`{"type":"post","body":"via dispatch"}`))
	last := ch.lastMessage(t)
	require.Equal(t, "posts", last["type"])
	posts := last["posts"].([]any)
	require.Len(t, posts, 1)

	core.HandleMessage(user, []byte(`{"type":"get_account","userId":"user-1"}`))
	assert.Equal(t, "account", ch.lastMessage(t)["type"])
}

func TestBroadcast_FailedSendDisconnectsOnlyThatSession(t *testing.T) {
	core := newTestCore()
	poster, _ := connectUser(t, core, "user-1", "ann")
	_, brokenCh := connectUser(t, core, "user-2", "ben")

	brokenCh.mu.Lock()
	brokenCh.failSend = true
	brokenCh.mu.Unlock()

	core.Post(poster, "hello world")

	assert.True(t, core.Registry().IsOnline("user-1"))
	assert.False(t, core.Registry().IsOnline("user-2"))
	assert.True(t, brokenCh.isClosed())
}

// postIDFromFeed pulls the newest post id out of the channel's latest feed
// broadcast.
func postIDFromFeed(t *testing.T, ch *fakeChannel) string {
	t.Helper()
	last := ch.lastMessage(t)
	require.Equal(t, "posts", last["type"])
	posts := last["posts"].([]any)
	require.NotEmpty(t, posts)
	return posts[0].(map[string]any)["postId"].(string)
}
