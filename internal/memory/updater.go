// Package memory applies published posts to the campaign memory.
package memory

import (
	"context"
	"fmt"
	"time"

	"RunRaiser/internal/domain"
	"RunRaiser/internal/ports"
)

// Confirmation is returned after every successful update.
const Confirmation = "[MEMORY UPDATED] Added latest post to episodic history."

// DefaultHistoryLimit bounds the episodic post history.
const DefaultHistoryLimit = 50

// Updater records published posts and persists the result through a store.
type Updater struct {
	store        ports.MemoryStore
	historyLimit int
	now          func() time.Time
}

var _ ports.MemoryUpdater = (*Updater)(nil)

// NewUpdater wires the store; historyLimit <= 0 uses DefaultHistoryLimit.
func NewUpdater(store ports.MemoryStore, historyLimit int, now func() time.Time) *Updater {
	if historyLimit <= 0 {
		historyLimit = DefaultHistoryLimit
	}
	if now == nil {
		now = time.Now
	}
	return &Updater{store: store, historyLimit: historyLimit, now: now}
}

// Update appends post to a copy of mem and stores it. mem is left untouched.
func (u *Updater) Update(ctx context.Context, mem domain.FullMemory, post domain.PostCandidate) (string, error) {
	next := Apply(mem, post, u.historyLimit, u.now())
	if u.store != nil {
		if err := u.store.Put(ctx, next); err != nil {
			return "", fmt.Errorf("persist memory: %w", err)
		}
	}
	return Confirmation, nil
}

// Apply returns mem with post recorded as the newest episodic entry.
func Apply(mem domain.FullMemory, post domain.PostCandidate, historyLimit int, now time.Time) domain.FullMemory {
	next := mem.Clone()
	posts := next.Episodic.PastSuccessfulPosts
	if n := len(posts); n == 0 || posts[n-1] != post.Text {
		posts = append(posts, post.Text)
	}
	if historyLimit > 0 && len(posts) > historyLimit {
		posts = posts[len(posts)-historyLimit:]
	}
	next.Episodic.PastSuccessfulPosts = posts
	next.Statistical.LastUpdateDate = now.UTC().Format(time.DateOnly)
	return next
}
