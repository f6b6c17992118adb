// Package feed owns the in-memory content store and social graph for the
// Bloggle session core: posts with their nested comments, and per-user
// public accounts with follower sets and aggregate like counts.
package feed

// Post is a single feed entry. Comments and UserLiked are owned by the
// ContentStore; callers only ever see deep copies.
type Post struct {
	ID         string     `json:"postId"`
	AuthorID   string     `json:"authorId"`
	AuthorName string     `json:"authorName"`
	Body       string     `json:"body"`
	Comments   []*Comment `json:"comments"`
	UserLiked  []string   `json:"userLiked"`
}

// Comment belongs to exactly one parent post.
type Comment struct {
	ID         string   `json:"commentId"`
	AuthorID   string   `json:"authorId"`
	AuthorName string   `json:"authorName"`
	Body       string   `json:"body"`
	UserLiked  []string `json:"userLiked"`
}

// Account is the public profile for a user id. PostIDs is newest-first.
// TotalLikes is a derived cache maintained by the orchestrator via
// SocialGraph.AdjustLikes.
type Account struct {
	UserID     string   `json:"userId"`
	Username   string   `json:"username"`
	PostIDs    []string `json:"posts"`
	TotalLikes int      `json:"totalLikes"`
	Followers  []string `json:"followers"`
}

// LikeResult reports the outcome of a like toggle. Liked is the state after
// the toggle; AuthorID identifies whose aggregate count must be adjusted.
// PostID is set for comment likes so the updated post can be broadcast.
type LikeResult struct {
	Liked    bool
	AuthorID string
	PostID   string
}

// FollowResult reports the state after a follow toggle.
type FollowResult struct {
	Following bool
}

func (p *Post) clone() *Post {
	cp := &Post{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Body:       p.Body,
		Comments:   make([]*Comment, 0, len(p.Comments)),
		UserLiked:  append([]string(nil), p.UserLiked...),
	}
	if cp.UserLiked == nil {
		cp.UserLiked = []string{}
	}
	for _, c := range p.Comments {
		cp.Comments = append(cp.Comments, c.clone())
	}
	return cp
}

func (c *Comment) clone() *Comment {
	liked := append([]string(nil), c.UserLiked...)
	if liked == nil {
		liked = []string{}
	}
	return &Comment{
		ID:         c.ID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Body:       c.Body,
		UserLiked:  liked,
	}
}

func (a *Account) clone() *Account {
	posts := append([]string(nil), a.PostIDs...)
	if posts == nil {
		posts = []string{}
	}
	followers := append([]string(nil), a.Followers...)
	if followers == nil {
		followers = []string{}
	}
	return &Account{
		UserID:     a.UserID,
		Username:   a.Username,
		PostIDs:    posts,
		TotalLikes: a.TotalLikes,
		Followers:  followers,
	}
}

// contains reports membership of id in a small slice-backed set.
func contains(set []string, id string) bool {
	for _, v := range set {
		if v == id {
			return true
		}
	}
	return false
}

// remove returns set without id, preserving order.
func remove(set []string, id string) []string {
	out := set[:0]
	for _, v := range set {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
