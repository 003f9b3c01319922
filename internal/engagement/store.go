// Package engagement reconciles what the viewer has done to this
// session's feed against server-reported counts. Local actions are held
// as per-item overlays and merged with baselines only at read time; a
// full refresh drops every overlay so stale deltas never outlive the
// server snapshot they were computed against.
package engagement

import (
	"sync"
	"time"
)

// Overlay is the local state layered over one item's server baselines.
// Created lazily on first interaction, discarded on Reset.
type Overlay struct {
	Liked        bool
	LikeDelta    int
	CommentCount *int
	Interest     int
	FlaggedUntil time.Time
}

type Store struct {
	mu       sync.Mutex
	overlays map[string]*Overlay
}

func NewStore() *Store {
	return &Store{overlays: make(map[string]*Overlay)}
}

func (s *Store) overlay(itemID string) *Overlay {
	o, ok := s.overlays[itemID]
	if !ok {
		o = &Overlay{}
		s.overlays[itemID] = o
	}
	return o
}

// ToggleLike flips the viewer's like on an item. Two calls return the
// item to its baseline state. Unknown ids get a fresh overlay.
func (s *Store) ToggleLike(itemID string, baselineLikes int) (liked bool, effectiveLikes int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.overlay(itemID)
	if o.Liked {
		o.Liked = false
		o.LikeDelta--
	} else {
		o.Liked = true
		o.LikeDelta++
	}
	return o.Liked, clampNonNegative(baselineLikes + o.LikeDelta)
}

// RecordComment sets the item's comment count. Last write wins: the UI
// is the sole writer within a session, so there is no merge conflict
// with the server baseline.
func (s *Store) RecordComment(itemID string, newCount int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.overlay(itemID)
	o.CommentCount = &newCount
	return newCount
}

// BumpInterest raises an item's live-interest counter by step and flags
// it as recently increased until the given instant. It touches only the
// interest fields, never Liked or CommentCount, so sampler ticks cannot
// clobber user actions.
func (s *Store) BumpInterest(itemID string, baseline, step int, until time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := s.overlay(itemID)
	o.Interest += step
	o.FlaggedUntil = until
	return baseline + o.Interest
}

// Interest returns the item's effective interest count and whether it
// recently increased (the transient flag has not expired at now).
func (s *Store) Interest(itemID string, baseline int, now time.Time) (count int, recent bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[itemID]
	if !ok {
		return baseline, false
	}
	return baseline + o.Interest, now.Before(o.FlaggedUntil)
}

// Liked reports whether the viewer has liked the item this session.
func (s *Store) Liked(itemID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[itemID]
	return ok && o.Liked
}

// Effective merges an item's baselines with its overlay. Pure read;
// never creates an overlay. Like counts clamp at zero.
func (s *Store) Effective(itemID string, baseLikes, baseComments int) (likes, comments int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.overlays[itemID]
	if !ok {
		return clampNonNegative(baseLikes), baseComments
	}
	likes = clampNonNegative(baseLikes + o.LikeDelta)
	comments = baseComments
	if o.CommentCount != nil {
		comments = *o.CommentCount
	}
	return likes, comments
}

// Reset drops all overlays. Called when a cold refresh lands: server
// state fully supersedes local deltas.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlays = make(map[string]*Overlay)
}

func clampNonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
