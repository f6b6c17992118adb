package session

import (
	"encoding/json"
	"fmt"
)

// Request is the closed union of inbound commands. DecodeRequest returns
// exactly one of the concrete types below; the core dispatches on them with
// an exhaustive type switch.
type Request interface {
	requestType() string
}

// MakePost publishes a new post.
type MakePost struct {
	Body string `json:"body"`
}

// MakeComment adds a comment to an existing post.
type MakeComment struct {
	Body   string `json:"body"`
	PostID string `json:"postId"`
}

// MakeLikePost toggles the sender's like on a post.
type MakeLikePost struct {
	PostID string `json:"postId"`
}

// MakeLikeComment toggles the sender's like on a comment.
type MakeLikeComment struct {
	CommentID string `json:"commentId"`
}

// MakeFollow toggles whether the sender follows the given user.
type MakeFollow struct {
	UserID string `json:"userId"`
}

// GetPost fetches one post with its comments.
type GetPost struct {
	PostID string `json:"postId"`
}

// GetAccount fetches one public profile.
type GetAccount struct {
	UserID string `json:"userId"`
}

// SearchAccounts looks up profiles by display name.
type SearchAccounts struct {
	Query string `json:"query"`
}

// GetNotifications asks for the sender's pending notifications.
type GetNotifications struct{}

// GetPosts asks for the full feed.
type GetPosts struct{}

func (MakePost) requestType() string         { return "post" }
func (MakeComment) requestType() string      { return "comment" }
func (MakeLikePost) requestType() string     { return "like_post" }
func (MakeLikeComment) requestType() string  { return "like_comment" }
func (MakeFollow) requestType() string       { return "follow" }
func (GetPost) requestType() string          { return "get_post" }
func (GetAccount) requestType() string       { return "get_account" }
func (SearchAccounts) requestType() string   { return "search_accounts" }
func (GetNotifications) requestType() string { return "notifications" }
func (GetPosts) requestType() string         { return "posts" }

// DecodeRequest parses one inbound frame into its typed command. Unknown
// types and malformed payloads are protocol errors; the connection stays
// open and only the sender hears about it.
func DecodeRequest(raw []byte) (Request, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	switch envelope.Type {
	case "post":
		return decodeAs[MakePost](raw)
	case "comment":
		return decodeAs[MakeComment](raw)
	case "like_post":
		return decodeAs[MakeLikePost](raw)
	case "like_comment":
		return decodeAs[MakeLikeComment](raw)
	case "follow":
		return decodeAs[MakeFollow](raw)
	case "get_post":
		return decodeAs[GetPost](raw)
	case "get_account":
		return decodeAs[GetAccount](raw)
	case "search_accounts":
		return decodeAs[SearchAccounts](raw)
	case "notifications":
		return GetNotifications{}, nil
	case "posts":
		return GetPosts{}, nil
	case "":
		return nil, fmt.Errorf("invalid request: missing type")
	default:
		return nil, fmt.Errorf("invalid request: unknown type %q", envelope.Type)
	}
}

func decodeAs[T Request](raw []byte) (Request, error) {
	var req T
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}
	return req, nil
}
