// Package notify routes notifications to their recipients: straight onto a
// live session's channel when the recipient is online, otherwise into an
// offline mailbox that is drained on their next connect.
package notify

// Kind discriminates the notification union on the wire.
type Kind string

const (
	KindPostLiked    Kind = "post_liked"
	KindCommentLiked Kind = "comment_liked"
	KindFollowing    Kind = "following"
	KindComment      Kind = "comment"
	KindNewPost      Kind = "new_post"
)

// Notification is a single immutable event addressed to one user. PostID is
// empty for Following.
type Notification struct {
	Type      Kind   `json:"type"`
	By        string `json:"by"`
	Timestamp int64  `json:"timestamp"`
	PostID    string `json:"postId,omitempty"`
	Message   string `json:"message"`
}

// PostLiked is sent to a post's author when someone likes it.
func PostLiked(by string, timestamp int64, postID string) Notification {
	return Notification{
		Type:      KindPostLiked,
		By:        by,
		Timestamp: timestamp,
		PostID:    postID,
		Message:   "Liked your post!",
	}
}

// CommentLiked is sent to a comment's author when someone likes it.
func CommentLiked(by string, timestamp int64, postID string) Notification {
	return Notification{
		Type:      KindCommentLiked,
		By:        by,
		Timestamp: timestamp,
		PostID:    postID,
		Message:   "Liked your comment!",
	}
}

// Following is sent to a user when someone starts following them.
func Following(by string, timestamp int64) Notification {
	return Notification{
		Type:      KindFollowing,
		By:        by,
		Timestamp: timestamp,
		Message:   "Started following you!",
	}
}

// Commented is sent to a post's author when someone comments on it.
func Commented(by string, timestamp int64, postID string) Notification {
	return Notification{
		Type:      KindComment,
		By:        by,
		Timestamp: timestamp,
		PostID:    postID,
		Message:   "Commented on your post!",
	}
}

// NewPost is sent to every follower of an author who publishes a post.
func NewPost(by string, timestamp int64, postID string) Notification {
	return Notification{
		Type:      KindNewPost,
		By:        by,
		Timestamp: timestamp,
		PostID:    postID,
		Message:   "Published a new post!",
	}
}
