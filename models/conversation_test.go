package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair(9, 3)
	assert.Equal(t, uint(3), a)
	assert.Equal(t, uint(9), b)

	a, b = CanonicalPair(3, 9)
	assert.Equal(t, uint(3), a)
	assert.Equal(t, uint(9), b)
}

func TestConversationParticipants(t *testing.T) {
	conv := &Conversation{UserID1: 3, UserID2: 9}
	assert.True(t, conv.Involves(3))
	assert.True(t, conv.Involves(9))
	assert.False(t, conv.Involves(4))

	assert.Equal(t, uint(9), conv.OtherParticipant(3))
	assert.Equal(t, uint(3), conv.OtherParticipant(9))
}
