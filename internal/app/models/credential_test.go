package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCredentialIsExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	skew := 2 * time.Minute

	credential := &CalendarCredential{ExpiryDate: now.Add(time.Hour)}
	assert.False(t, credential.IsExpired(now, skew))

	// Inside the skew window counts as expired.
	credential.ExpiryDate = now.Add(time.Minute)
	assert.True(t, credential.IsExpired(now, skew))

	credential.ExpiryDate = now.Add(-time.Hour)
	assert.True(t, credential.IsExpired(now, skew))
}

func TestExternalEventBlocks(t *testing.T) {
	event := &ExternalEvent{Status: "confirmed"}
	assert.True(t, event.Blocks())

	event = &ExternalEvent{Status: "cancelled"}
	assert.False(t, event.Blocks())

	event = &ExternalEvent{Status: "confirmed", Transparency: "transparent"}
	assert.False(t, event.Blocks())
}
