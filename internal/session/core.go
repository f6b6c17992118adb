package session

import (
	"errors"
	"log"
	"time"

	"github.com/fylora/bloggle/internal/feed"
	"github.com/fylora/bloggle/internal/notify"
)

const noResultsMessage = "Did you hear that? No? That's the sound of silence, just like our results. Keep searching!"

// Core is the orchestrator behind every live session. It owns the wiring
// between the content store, the social graph, the notification router, and
// the registry, and is the only component the transport layer talks to.
//
// Every exported method leaves store locks before touching any channel:
// stores hand out snapshots, responses are marshalled from those, and sends
// go through buffered channels that never block on a slow peer.
type Core struct {
	content  *feed.ContentStore
	graph    *feed.SocialGraph
	registry *Registry
	router   *notify.Router
}

// NewCore assembles the session core around the given stores.
func NewCore(content *feed.ContentStore, graph *feed.SocialGraph, registry *Registry) *Core {
	core := &Core{
		content:  content,
		graph:    graph,
		registry: registry,
	}
	core.router = notify.NewRouter(core)
	return core
}

// Registry exposes the session registry for transport-level coordination.
func (c *Core) Registry() *Registry {
	return c.registry
}

// Deliver implements notify.Deliverer: it pushes a single notification onto
// the recipient's live channel, reporting false when the user is offline so
// the router queues it instead.
func (c *Core) Deliver(userID string, n notify.Notification) bool {
	ch := c.registry.ChannelFor(userID)
	if ch == nil {
		return false
	}
	if err := ch.Send(NotificationsPayload([]notify.Notification{n})); err != nil {
		log.Printf("Live notification to %s failed, queueing: %v", userID, err)
		return false
	}
	return true
}

// Connect moves a verified identity into the Active state: the registry
// slot is claimed first (duplicates rejected before any side effect), the
// account is ensured, the current feed replayed, and the offline mailbox
// drained onto the new channel.
func (c *Core) Connect(userID, username string, ch Channel) (*ActiveUser, error) {
	user, err := c.registry.Connect(userID, username, ch)
	if err != nil {
		return nil, err
	}

	c.graph.EnsureAccount(userID, username)

	if err := ch.Send(PostsPayload(c.content.ListPosts())); err != nil {
		log.Printf("Feed replay to %s failed: %v", username, err)
	}

	if queued := c.router.DrainAndClear(userID); len(queued) > 0 {
		if err := ch.Send(NotificationsPayload(queued)); err != nil {
			log.Printf("Backlog replay to %s failed: %v", username, err)
		}
	}

	log.Printf("User %s connected. Active sessions: %d", username, c.registry.Count())
	return user, nil
}

// Disconnect removes the session from the registry and closes its channel.
// Errors are logged, not retried; a second disconnect is reported but
// harmless.
func (c *Core) Disconnect(user *ActiveUser) error {
	if err := c.registry.Disconnect(user); err != nil {
		log.Printf("Disconnect of %s: %v", user.Username, err)
		return err
	}
	log.Printf("User %s disconnected. Active sessions: %d", user.Username, c.registry.Count())
	return nil
}

// HandleMessage decodes one inbound frame and dispatches it. Malformed
// messages produce an error response to the sender only; the session stays
// Active.
func (c *Core) HandleMessage(user *ActiveUser, raw []byte) {
	request, err := DecodeRequest(raw)
	if err != nil {
		log.Printf("Protocol error from %s: %v", user.Username, err)
		c.send(user, ErrorPayload(err.Error()))
		return
	}

	switch req := request.(type) {
	case MakePost:
		c.Post(user, req.Body)
	case MakeComment:
		c.Comment(user, req.PostID, req.Body)
	case MakeLikePost:
		c.LikePost(user, req.PostID)
	case MakeLikeComment:
		c.LikeComment(user, req.CommentID)
	case MakeFollow:
		c.Follow(user, req.UserID)
	case GetPost:
		c.GetPost(user, req.PostID)
	case GetAccount:
		c.GetAccount(user, req.UserID)
	case SearchAccounts:
		c.SearchAccounts(user, req.Query)
	case GetNotifications:
		c.GetNotifications(user)
	case GetPosts:
		c.GetPosts(user)
	default:
		// DecodeRequest returns only the types above.
		c.send(user, ErrorPayload("invalid request"))
	}
}

// Post publishes a new post, notifies the author's followers, and
// broadcasts the updated feed to every active session.
func (c *Core) Post(user *ActiveUser, body string) {
	post, err := c.content.CreatePost(user.UserID, user.Username, body)
	if err != nil {
		c.sendError(user, "post", err)
		return
	}

	c.graph.AddPost(user.UserID, post.ID)

	timestamp := time.Now().UnixMilli()
	for _, follower := range c.graph.Followers(user.UserID) {
		c.router.Notify(follower, user.UserID, notify.NewPost(user.Username, timestamp, post.ID))
	}

	c.broadcast(PostsPayload(c.content.ListPosts()))
}

// Comment appends a comment to a post, notifies the post's author, and
// broadcasts the updated post to every active session.
func (c *Core) Comment(user *ActiveUser, postID, body string) {
	if _, err := c.content.AddComment(postID, user.UserID, user.Username, body); err != nil {
		c.sendError(user, "comment", err)
		return
	}

	post, err := c.content.GetPost(postID)
	if err != nil {
		c.sendError(user, "comment", err)
		return
	}

	c.router.Notify(post.AuthorID, user.UserID, notify.Commented(user.Username, time.Now().UnixMilli(), postID))
	c.broadcast(PostPayload(post))
}

// LikePost toggles the sender's like on a post, keeps the author's
// aggregate count in step, notifies the author on the liked transition, and
// broadcasts the updated feed.
func (c *Core) LikePost(user *ActiveUser, postID string) {
	result, err := c.content.TogglePostLike(postID, user.UserID)
	if err != nil {
		c.sendError(user, "like post", err)
		return
	}

	if result.Liked {
		c.graph.AdjustLikes(result.AuthorID, 1)
		c.router.Notify(result.AuthorID, user.UserID, notify.PostLiked(user.Username, time.Now().UnixMilli(), postID))
		c.send(user, ConfirmationPayload("Post successfully liked"))
	} else {
		c.graph.AdjustLikes(result.AuthorID, -1)
		c.send(user, ConfirmationPayload("Post successfully disliked"))
	}

	c.broadcast(PostsPayload(c.content.ListPosts()))
}

// LikeComment toggles the sender's like on a comment, adjusts the comment
// author's aggregate count, notifies them on the liked transition, and
// broadcasts the comment's parent post.
func (c *Core) LikeComment(user *ActiveUser, commentID string) {
	result, err := c.content.ToggleCommentLike(commentID, user.UserID)
	if err != nil {
		c.sendError(user, "like comment", err)
		return
	}

	if result.Liked {
		c.graph.AdjustLikes(result.AuthorID, 1)
		c.router.Notify(result.AuthorID, user.UserID, notify.CommentLiked(user.Username, time.Now().UnixMilli(), result.PostID))
		c.send(user, ConfirmationPayload("Comment successfully liked"))
	} else {
		c.graph.AdjustLikes(result.AuthorID, -1)
		c.send(user, ConfirmationPayload("Comment successfully disliked"))
	}

	if post, err := c.content.GetPost(result.PostID); err == nil {
		c.broadcast(PostPayload(post))
	}
}

// Follow toggles whether the sender follows targetID. Only the transition
// to "now following" notifies the target.
func (c *Core) Follow(user *ActiveUser, targetID string) {
	result, err := c.graph.ToggleFollow(user.UserID, targetID)
	if err != nil {
		c.sendError(user, "follow", err)
		return
	}

	if result.Following {
		c.router.Notify(targetID, user.UserID, notify.Following(user.Username, time.Now().UnixMilli()))
		c.send(user, ConfirmationPayload("Followed successfully"))
	} else {
		c.send(user, ConfirmationPayload("Unfollowed successfully"))
	}
}

// GetPost replies with one post and its comments.
func (c *Core) GetPost(user *ActiveUser, postID string) {
	post, err := c.content.GetPost(postID)
	if err != nil {
		c.sendError(user, "get post", err)
		return
	}
	c.send(user, PostPayload(post))
}

// GetAccount replies with one public profile.
func (c *Core) GetAccount(user *ActiveUser, userID string) {
	account, err := c.graph.GetAccount(userID)
	if err != nil {
		c.sendError(user, "get account", err)
		return
	}
	c.send(user, AccountPayload(account))
}

// SearchAccounts replies with ranked profile matches. No matches is a
// normal end state reported as such, not a fault.
func (c *Core) SearchAccounts(user *ActiveUser, query string) {
	accounts := c.graph.SearchAccounts(query, feed.DefaultSearchLimit)
	if len(accounts) == 0 {
		c.send(user, ErrorPayload(noResultsMessage))
		return
	}
	c.send(user, AccountsPayload(accounts))
}

// GetNotifications replies with the sender's pending mailbox. The mailbox
// is drained at connect, so this is usually the empty-result response.
func (c *Core) GetNotifications(user *ActiveUser) {
	pending := c.router.Pending(user.UserID)
	if len(pending) == 0 {
		c.send(user, ErrorPayload("No notifications yet"))
		return
	}
	c.send(user, NotificationsPayload(pending))
}

// GetPosts replies with the full newest-first feed.
func (c *Core) GetPosts(user *ActiveUser) {
	c.send(user, PostsPayload(c.content.ListPosts()))
}

func (c *Core) sendError(user *ActiveUser, action string, err error) {
	log.Printf("Failed to perform action %q for %s: %v", action, user.Username, err)
	c.send(user, ErrorPayload(errorText(err)))
}

func (c *Core) send(user *ActiveUser, payload []byte) {
	if err := user.Channel.Send(payload); err != nil {
		log.Printf("Send to %s failed: %v", user.Username, err)
		_ = c.registry.Disconnect(user)
	}
}

// broadcast fans a payload out to every active session. Failed sessions are
// dropped; a slow or gone peer never affects the others.
func (c *Core) broadcast(payload []byte) {
	for _, user := range c.registry.Snapshot() {
		c.send(user, payload)
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, feed.ErrEmptyBody):
		return "The body cannot be empty"
	case errors.Is(err, feed.ErrPostNotFound):
		return "Post not found"
	case errors.Is(err, feed.ErrCommentNotFound):
		return "Comment not found"
	case errors.Is(err, feed.ErrAccountNotFound):
		return "User not found"
	case errors.Is(err, feed.ErrSelfFollow):
		return "You can't follow yourself"
	default:
		return err.Error()
	}
}
