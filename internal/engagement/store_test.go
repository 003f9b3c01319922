package engagement

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToggleLikeIdempotent(t *testing.T) {
	s := NewStore()

	liked, likes := s.ToggleLike("post-1", 10)
	assert.True(t, liked)
	assert.Equal(t, 11, likes)

	liked, likes = s.ToggleLike("post-1", 10)
	assert.False(t, liked)
	assert.Equal(t, 10, likes)

	effLikes, _ := s.Effective("post-1", 10, 0)
	assert.Equal(t, 10, effLikes)
}

func TestToggleLikeUnknownItem(t *testing.T) {
	s := NewStore()

	// Unknown ids get a fresh overlay instead of an error.
	liked, likes := s.ToggleLike("never-seen", 0)
	assert.True(t, liked)
	assert.Equal(t, 1, likes)
}

func TestEffectiveLikesNeverNegative(t *testing.T) {
	s := NewStore()

	for i := 0; i < 101; i++ {
		_, likes := s.ToggleLike("post-1", 0)
		assert.GreaterOrEqual(t, likes, 0)
	}
	likes, _ := s.Effective("post-1", 0, 0)
	assert.GreaterOrEqual(t, likes, 0)
}

func TestRecordCommentLastWriteWins(t *testing.T) {
	s := NewStore()

	assert.Equal(t, 3, s.RecordComment("post-1", 3))
	assert.Equal(t, 7, s.RecordComment("post-1", 7))

	_, comments := s.Effective("post-1", 0, 2)
	assert.Equal(t, 7, comments)
}

func TestEffectiveWithoutOverlayIsBaseline(t *testing.T) {
	s := NewStore()

	likes, comments := s.Effective("untouched", 12, 4)
	assert.Equal(t, 12, likes)
	assert.Equal(t, 4, comments)
}

func TestResetDropsAllOverlays(t *testing.T) {
	s := NewStore()

	s.ToggleLike("post-1", 10)
	s.ToggleLike("post-1", 10)
	s.ToggleLike("post-1", 10)
	s.RecordComment("post-1", 99)

	s.Reset()

	// Server state wins on refresh: the new baseline reads back exactly.
	likes, comments := s.Effective("post-1", 7, 2)
	assert.Equal(t, 7, likes)
	assert.Equal(t, 2, comments)
	assert.False(t, s.Liked("post-1"))
}

func TestBumpInterestDoesNotTouchUserState(t *testing.T) {
	s := NewStore()
	now := time.Now()

	s.ToggleLike("post-1", 5)
	s.RecordComment("post-1", 4)

	count := s.BumpInterest("post-1", 100, 1, now.Add(3*time.Second))
	assert.Equal(t, 101, count)

	assert.True(t, s.Liked("post-1"))
	likes, comments := s.Effective("post-1", 5, 0)
	assert.Equal(t, 6, likes)
	assert.Equal(t, 4, comments)
}

func TestInterestFlagExpires(t *testing.T) {
	s := NewStore()
	now := time.Now()

	s.BumpInterest("post-1", 100, 1, now.Add(3*time.Second))

	count, recent := s.Interest("post-1", 100, now)
	assert.Equal(t, 101, count)
	assert.True(t, recent)

	count, recent = s.Interest("post-1", 100, now.Add(4*time.Second))
	assert.Equal(t, 101, count)
	assert.False(t, recent)
}
