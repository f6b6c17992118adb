package feed

import (
	"sort"
	"strings"
	"sync"
)

// DefaultSearchLimit caps account search results when the caller does not
// supply a limit.
const DefaultSearchLimit = 50

// SocialGraph owns the per-user public accounts: follower sets, authored
// post ids, and the aggregate like-count cache. One RWMutex guards all
// operations; returned accounts are snapshots.
type SocialGraph struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

// NewSocialGraph creates an empty social graph.
func NewSocialGraph() *SocialGraph {
	return &SocialGraph{accounts: make(map[string]*Account)}
}

// EnsureAccount creates the account for userID if it does not exist yet.
// Safe to call on every connect.
func (g *SocialGraph) EnsureAccount(userID, username string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, ok := g.accounts[userID]; !ok {
		g.accounts[userID] = &Account{UserID: userID, Username: username}
	}
}

// ToggleFollow flips followerID's membership in the target's follower set.
// Following yourself is rejected.
func (g *SocialGraph) ToggleFollow(followerID, targetID string) (FollowResult, error) {
	if followerID == targetID {
		return FollowResult{}, ErrSelfFollow
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	target, ok := g.accounts[targetID]
	if !ok {
		return FollowResult{}, ErrAccountNotFound
	}

	if contains(target.Followers, followerID) {
		target.Followers = remove(target.Followers, followerID)
		return FollowResult{Following: false}, nil
	}
	target.Followers = append(target.Followers, followerID)
	return FollowResult{Following: true}, nil
}

// AdjustLikes moves userID's aggregate like count by delta. Unknown users
// are ignored; the cache only tracks existing accounts.
func (g *SocialGraph) AdjustLikes(userID string, delta int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if account, ok := g.accounts[userID]; ok {
		account.TotalLikes += delta
	}
}

// AddPost records postID as the newest authored post of userID.
func (g *SocialGraph) AddPost(userID, postID string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if account, ok := g.accounts[userID]; ok {
		account.PostIDs = append([]string{postID}, account.PostIDs...)
	}
}

// Followers returns a snapshot of the follower ids of userID.
func (g *SocialGraph) Followers(userID string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	account, ok := g.accounts[userID]
	if !ok {
		return nil
	}
	return append([]string(nil), account.Followers...)
}

// GetAccount returns a snapshot of the account for userID.
func (g *SocialGraph) GetAccount(userID string) (*Account, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	account, ok := g.accounts[userID]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account.clone(), nil
}

// SearchAccounts finds accounts whose username contains query
// (case-insensitive). Ranking: exact match first, then prefix matches, then
// the rest alphabetically. The result is truncated to limit; limit <= 0
// means DefaultSearchLimit. An empty result is a normal outcome.
func (g *SocialGraph) SearchAccounts(query string, limit int) []*Account {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	needle := strings.ToLower(query)

	g.mu.RLock()
	matches := make([]*Account, 0)
	for _, account := range g.accounts {
		if strings.Contains(strings.ToLower(account.Username), needle) {
			matches = append(matches, account.clone())
		}
	}
	g.mu.RUnlock()

	sort.Slice(matches, func(i, j int) bool {
		ri, rj := searchRank(matches[i].Username, needle), searchRank(matches[j].Username, needle)
		if ri != rj {
			return ri < rj
		}
		return matches[i].Username < matches[j].Username
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func searchRank(username, needle string) int {
	lower := strings.ToLower(username)
	switch {
	case lower == needle:
		return 0
	case strings.HasPrefix(lower, needle):
		return 1
	default:
		return 2
	}
}
