package feed

import (
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ContentStore owns all posts and their comments. Every operation is a
// critical section guarded by one RWMutex; all returned posts and comments
// are deep copies so callers can marshal or inspect them without holding
// the lock.
type ContentStore struct {
	mu    sync.RWMutex
	feed  []*Post           // newest-first
	posts map[string]*Post  // postID -> post
	index map[string]string // commentID -> postID
}

// NewContentStore creates an empty content store.
func NewContentStore() *ContentStore {
	return &ContentStore{
		posts: make(map[string]*Post),
		index: make(map[string]string),
	}
}

// CreatePost validates the body, assigns an id, and prepends the new post
// to the global feed. The returned post is a snapshot.
func (s *ContentStore) CreatePost(authorID, authorName, body string) (*Post, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post := &Post{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
	}
	s.posts[post.ID] = post
	s.feed = append([]*Post{post}, s.feed...)
	return post.clone(), nil
}

// AddComment validates the body and prepends a new comment to the post's
// comment list. Returns the comment snapshot and the post author's id so the
// caller can notify them.
func (s *ContentStore) AddComment(postID, authorID, authorName, body string) (*Comment, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}

	comment := &Comment{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		AuthorName: authorName,
		Body:       body,
	}
	post.Comments = append([]*Comment{comment}, post.Comments...)
	s.index[comment.ID] = postID
	return comment.clone(), nil
}

// TogglePostLike flips userID's membership in the post's like set and
// reports whether the post is now liked along with the post author's id.
func (s *ContentStore) TogglePostLike(postID, userID string) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	post, ok := s.posts[postID]
	if !ok {
		return LikeResult{}, ErrPostNotFound
	}

	result := LikeResult{AuthorID: post.AuthorID, PostID: post.ID}
	if contains(post.UserLiked, userID) {
		post.UserLiked = remove(post.UserLiked, userID)
	} else {
		post.UserLiked = append(post.UserLiked, userID)
		result.Liked = true
	}
	return result, nil
}

// ToggleCommentLike flips userID's membership in the comment's like set.
// The result carries the comment author's id and the parent post id.
func (s *ContentStore) ToggleCommentLike(commentID, userID string) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	postID, ok := s.index[commentID]
	if !ok {
		return LikeResult{}, ErrCommentNotFound
	}
	post := s.posts[postID]

	var comment *Comment
	for _, c := range post.Comments {
		if c.ID == commentID {
			comment = c
			break
		}
	}
	if comment == nil {
		return LikeResult{}, ErrCommentNotFound
	}

	result := LikeResult{AuthorID: comment.AuthorID, PostID: postID}
	if contains(comment.UserLiked, userID) {
		comment.UserLiked = remove(comment.UserLiked, userID)
	} else {
		comment.UserLiked = append(comment.UserLiked, userID)
		result.Liked = true
	}
	return result, nil
}

// GetPost returns a snapshot of the post with the given id.
func (s *ContentStore) GetPost(postID string) (*Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	post, ok := s.posts[postID]
	if !ok {
		return nil, ErrPostNotFound
	}
	return post.clone(), nil
}

// ListPosts returns a newest-first snapshot of the whole feed.
func (s *ContentStore) ListPosts() []*Post {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Post, 0, len(s.feed))
	for _, p := range s.feed {
		out = append(out, p.clone())
	}
	return out
}
