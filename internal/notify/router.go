package notify

import "sync"

// Deliverer attempts immediate delivery of a notification to a connected
// user. It reports false when the user is offline (or the send failed), in
// which case the router queues the notification instead. The session core
// implements this on top of its registry.
type Deliverer interface {
	Deliver(userID string, n Notification) bool
}

// Router decides per notification between live delivery and the offline
// mailbox. Mailboxes are newest-first and created lazily on the first
// undeliverable notification. One mutex guards all mailbox state so an
// enqueue can never interleave with a drain.
type Router struct {
	mu        sync.Mutex
	deliverer Deliverer
	mailboxes map[string][]Notification
}

// NewRouter creates a router that attempts live delivery through d.
func NewRouter(d Deliverer) *Router {
	return &Router{
		deliverer: d,
		mailboxes: make(map[string][]Notification),
	}
}

// Notify routes n to recipientID. A user is never notified of their own
// action. Online recipients get the notification immediately and nothing is
// queued; offline recipients get it prepended to their mailbox.
func (r *Router) Notify(recipientID, actorID string, n Notification) {
	if recipientID == actorID {
		return
	}

	if r.deliverer != nil && r.deliverer.Deliver(recipientID, n) {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.mailboxes[recipientID] = append([]Notification{n}, r.mailboxes[recipientID]...)
}

// DrainAndClear removes and returns recipient's mailbox, newest-first.
// Called once at connect time; a queued notification is handed out exactly
// once and the mailbox is gone afterwards.
func (r *Router) DrainAndClear(userID string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	queued := r.mailboxes[userID]
	delete(r.mailboxes, userID)
	return queued
}

// Pending returns a copy of the recipient's current mailbox without
// draining it.
func (r *Router) Pending(userID string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]Notification(nil), r.mailboxes[userID]...)
}
