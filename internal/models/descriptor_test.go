package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewDescriptor_TruncatesToSeconds(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	ts := time.Date(2024, 5, 1, 12, 30, 15, 987654321, loc)

	d := NewDescriptor(uuid.New(), "a.txt", 6, "abc", ts, "text/plain")

	assert.Equal(t, time.UTC, d.LastModified.Location())
	assert.Equal(t, 0, d.LastModified.Nanosecond())
	assert.True(t, d.LastModified.Equal(ts.Truncate(time.Second)))
}

func TestDescriptor_ETag(t *testing.T) {
	d := Descriptor{ContentHash: "deadbeef"}

	assert.Equal(t, `"deadbeef"`, d.ETag())
	assert.True(t, d.MatchesETag(`"deadbeef"`))
	assert.False(t, d.MatchesETag("deadbeef"))
	assert.False(t, d.MatchesETag(`W/"deadbeef"`))
	assert.False(t, d.MatchesETag(`"deadbeef", "other"`))
}

func TestDescriptor_NotModifiedSince(t *testing.T) {
	lm := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	d := Descriptor{LastModified: lm}

	tests := []struct {
		name   string
		client time.Time
		want   bool
	}{
		{"equal", lm, true},
		{"client newer", lm.Add(time.Hour), true},
		{"client older", lm.Add(-time.Second), false},
		{"same second with fraction", lm.Add(500 * time.Millisecond), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.NotModifiedSince(tt.client))
		})
	}
}

func TestValidators_Presence(t *testing.T) {
	var v Validators
	assert.False(t, v.HasIfNoneMatch())
	assert.False(t, v.HasIfModifiedSince())

	v = Validators{IfNoneMatch: `"x"`, IfModifiedSince: time.Now()}
	assert.True(t, v.HasIfNoneMatch())
	assert.True(t, v.HasIfModifiedSince())
}
