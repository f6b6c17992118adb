package session

import (
	"encoding/json"

	"github.com/fylora/bloggle/internal/feed"
	"github.com/fylora/bloggle/internal/notify"
)

// Outbound responses are a tagged union mirroring the inbound commands.
// Each helper marshals straight to the wire form so callers hold no store
// locks while encoding.

type postResponse struct {
	Type string     `json:"type"`
	Post *feed.Post `json:"post"`
}

type postsResponse struct {
	Type  string       `json:"type"`
	Posts []*feed.Post `json:"posts"`
}

type notificationsResponse struct {
	Type          string                `json:"type"`
	Notifications []notify.Notification `json:"notifications"`
}

type accountResponse struct {
	Type    string        `json:"type"`
	Account *feed.Account `json:"account"`
}

type accountsResponse struct {
	Type     string          `json:"type"`
	Accounts []*feed.Account `json:"accounts"`
}

type confirmationResponse struct {
	Type         string `json:"type"`
	Confirmation string `json:"confirmation"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func marshalResponse(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		// All response types marshal from plain structs; this cannot fail
		// at runtime with well-formed data.
		return []byte(`{"type":"error","error":"internal encoding error"}`)
	}
	return payload
}

// PostPayload encodes a single-post response.
func PostPayload(post *feed.Post) []byte {
	return marshalResponse(postResponse{Type: "post", Post: post})
}

// PostsPayload encodes a full-feed response.
func PostsPayload(posts []*feed.Post) []byte {
	if posts == nil {
		posts = []*feed.Post{}
	}
	return marshalResponse(postsResponse{Type: "posts", Posts: posts})
}

// NotificationsPayload encodes a notification backlog response.
func NotificationsPayload(notifications []notify.Notification) []byte {
	if notifications == nil {
		notifications = []notify.Notification{}
	}
	return marshalResponse(notificationsResponse{Type: "notifications", Notifications: notifications})
}

// AccountPayload encodes a single-profile response.
func AccountPayload(account *feed.Account) []byte {
	return marshalResponse(accountResponse{Type: "account", Account: account})
}

// AccountsPayload encodes a search-result response.
func AccountsPayload(accounts []*feed.Account) []byte {
	if accounts == nil {
		accounts = []*feed.Account{}
	}
	return marshalResponse(accountsResponse{Type: "accounts", Accounts: accounts})
}

// ConfirmationPayload encodes a success acknowledgement.
func ConfirmationPayload(text string) []byte {
	return marshalResponse(confirmationResponse{Type: "confirmation", Confirmation: text})
}

// ErrorPayload encodes an error addressed to one sender.
func ErrorPayload(text string) []byte {
	return marshalResponse(errorResponse{Type: "error", Error: text})
}
