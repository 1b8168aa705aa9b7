// Package notify owns the in-memory notification list and unread
// counter shown in the header: a bounded, time-relative view of the
// user's most recent notifications, reconciled with server state on
// every fetch.
package notify

import (
	"time"

	"github.com/counselhub/portal/internal/api"
	"github.com/counselhub/portal/internal/model"
)

// MaxEntries caps how many notifications a fetch retains.
const MaxEntries = 10

// Store holds the notification view-models and the unread counter.
// It is mutated only on the UI loop; overlapping fetches are resolved
// by a monotonic sequence number so the last-issued fetch wins.
type Store struct {
	now func() time.Time

	list    []model.Notification
	unread  int
	loading bool
	seq     int
}

// NewStore creates an empty store. The now func supplies the current
// time for timeAgo computation; pass time.Now outside of tests.
func NewStore(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{now: now}
}

// List returns the current notifications, newest first as fetched.
func (s *Store) List() []model.Notification {
	return s.list
}

// UnreadCount returns the number of notifications without a read
// timestamp.
func (s *Store) UnreadCount() int {
	return s.unread
}

// Loading reports whether a fetch is in flight.
func (s *Store) Loading() bool {
	return s.loading
}

// Seq returns the most recently issued fetch sequence number.
func (s *Store) Seq() int {
	return s.seq
}

// BeginFetch marks the loading flag and issues a new fetch sequence
// number. The caller passes the number back to ApplyFetch so stale
// completions can be discarded.
func (s *Store) BeginFetch() int {
	s.loading = true
	s.seq++
	return s.seq
}

// ApplyFetch reconciles a completed fetch. A completion whose
// sequence number is not the latest issued is ignored entirely,
// including its loading-flag reset. On error the list resets to
// empty; on success at most MaxEntries entries are kept, each
// transformed into its view-model. The unread counter is recomputed
// either way. Returns false for discarded stale completions.
func (s *Store) ApplyFetch(seq int, batch []api.Notification, err error) bool {
	if seq != s.seq {
		return false
	}
	s.loading = false

	if err != nil {
		s.list = nil
		s.unread = 0
		return true
	}

	if len(batch) > MaxEntries {
		batch = batch[:MaxEntries]
	}

	now := s.now()
	list := make([]model.Notification, 0, len(batch))
	for _, raw := range batch {
		list = append(list, transform(raw, now))
	}

	s.list = list
	s.unread = countUnread(list)
	return true
}

// NeedsMarkRead reports whether the notification exists locally and
// is still unread. Mark-as-read must not fire a remote call for an
// already-read entry.
func (s *Store) NeedsMarkRead(id string) bool {
	for i := range s.list {
		if s.list[i].ID == id {
			return s.list[i].Unread()
		}
	}
	return false
}

// ConfirmRead records a successful server-side mark-as-read: the
// entry's read timestamp is set and the unread counter decremented,
// floored at zero. Unknown or already-read ids are no-ops.
func (s *Store) ConfirmRead(id string) {
	for i := range s.list {
		if s.list[i].ID != id || !s.list[i].Unread() {
			continue
		}
		readAt := s.now()
		s.list[i].ReadAt = &readAt
		if s.unread > 0 {
			s.unread--
		}
		return
	}
}

// Clear empties the list and zeroes the counter after a successful
// clear-all. On failure the caller leaves the store untouched and
// surfaces the error instead.
func (s *Store) Clear() {
	s.list = nil
	s.unread = 0
}

// countUnread recomputes the unread counter from the list.
func countUnread(list []model.Notification) int {
	count := 0
	for i := range list {
		if list[i].Unread() {
			count++
		}
	}
	return count
}

// transform builds the view-model for one raw notification: parsed
// timestamps, the relative age label, and the avatar with its
// placeholder fallback.
func transform(raw api.Notification, now time.Time) model.Notification {
	createdAt := parseTime(raw.CreatedAt)
	if createdAt.IsZero() {
		// Absent creation time defaults to now, which forces
		// the "Just now" bucket.
		createdAt = now
	}

	var readAt *time.Time
	if t := parseTime(raw.ReadAt); !t.IsZero() {
		readAt = &t
	}

	avatar := raw.Picture()
	if avatar == "" {
		avatar = model.DefaultAvatar
	}

	return model.Notification{
		ID:        raw.ID,
		Message:   raw.Message,
		CreatedAt: createdAt,
		ReadAt:    readAt,
		Avatar:    avatar,
		TimeAgo:   timeAgo(createdAt, now),
	}
}

// parseTime parses a backend timestamp, returning the zero time for
// absent or malformed values.
func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	return time.Time{}
}
