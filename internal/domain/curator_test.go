package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCuratorHasChatID(t *testing.T) {
	var zero int64
	id := int64(42)
	assert.False(t, (&Curator{}).HasChatID())
	assert.False(t, (&Curator{ChatID: &zero}).HasChatID())
	assert.True(t, (&Curator{ChatID: &id}).HasChatID())
}
