package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventInput_Validate(t *testing.T) {
	start := time.Date(2026, 11, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		in      EventInput
		wantErr []string
	}{
		{
			name: "valid",
			in:   EventInput{Title: "Go meetup", StartsAt: start, Capacity: 30},
		},
		{
			name:    "missing title and start",
			in:      EventInput{Capacity: 3},
			wantErr: []string{"title is required", "starts_at is required"},
		},
		{
			name:    "zero capacity",
			in:      EventInput{Title: "x", StartsAt: start},
			wantErr: []string{"capacity must be a positive integer"},
		},
		{
			name:    "capacity above limit",
			in:      EventInput{Title: "x", StartsAt: start, Capacity: MaxEventCapacity + 1},
			wantErr: []string{"capacity cannot exceed 100000"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErr, tt.in.Validate())
		})
	}
}

func TestEventPatch(t *testing.T) {
	assert.True(t, EventPatch{}.IsEmpty())

	empty := "  "
	negative := -1
	p := EventPatch{Title: &empty, Capacity: &negative}
	assert.False(t, p.IsEmpty())
	assert.Equal(t, []string{"title cannot be empty", "capacity must be a positive integer"}, p.Validate())
}

func TestEvent_RemainingAndIsFull(t *testing.T) {
	e := &Event{Capacity: 3, Occupancy: 2}
	assert.Equal(t, 1, e.Remaining())
	assert.False(t, e.IsFull())

	e.Occupancy = 3
	assert.Equal(t, 0, e.Remaining())
	assert.True(t, e.IsFull())
}

func TestPrincipalContext(t *testing.T) {
	_, ok := PrincipalFromContext(t.Context())
	assert.False(t, ok)

	ctx := ContextWithPrincipal(t.Context(), &Principal{UserID: "u1", Email: "u1@example.com"})
	p, ok := PrincipalFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, "u1", p.UserID)
}
