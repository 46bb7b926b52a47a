package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s, ok := Summarize([]AssignmentDelivery{
		{Status: DeliverySent},
		{Status: DeliveryPartiallySent},
		{Status: DeliveryFailed},
	})
	assert.Equal(t, DeliverySummary{Total: 3, Sent: 1, Partial: 1, Failed: 1}, s)
	assert.False(t, ok)

	s, ok = Summarize([]AssignmentDelivery{{Status: DeliverySent}, {Status: DeliveryPartiallySent}})
	assert.Equal(t, 0, s.Failed)
	assert.True(t, ok)

	s, ok = Summarize(nil)
	assert.Equal(t, DeliverySummary{}, s)
	assert.True(t, ok)
}
