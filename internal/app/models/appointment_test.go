package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo(t *testing.T) {
	testCases := []struct {
		from    AppointmentStatus
		to      AppointmentStatus
		allowed bool
	}{
		{AppointmentScheduled, AppointmentConfirmed, true},
		{AppointmentScheduled, AppointmentCancelled, true},
		{AppointmentScheduled, AppointmentNoShow, true},
		{AppointmentScheduled, AppointmentCompleted, false},
		{AppointmentConfirmed, AppointmentCompleted, true},
		{AppointmentConfirmed, AppointmentCancelled, true},
		{AppointmentConfirmed, AppointmentNoShow, true},
		{AppointmentConfirmed, AppointmentScheduled, false},
		{AppointmentCompleted, AppointmentCancelled, false},
		{AppointmentCompleted, AppointmentNoShow, false},
		{AppointmentCancelled, AppointmentConfirmed, false},
		{AppointmentCancelled, AppointmentCancelled, false},
		{AppointmentNoShow, AppointmentCompleted, false},
	}

	for _, tc := range testCases {
		appointment := &Appointment{Status: tc.from}
		assert.Equal(t, tc.allowed, appointment.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	start := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	appointment := &Appointment{
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}

	// Touching endpoints never overlap.
	assert.False(t, appointment.Overlaps(start.Add(time.Hour), start.Add(90*time.Minute)))
	assert.False(t, appointment.Overlaps(start.Add(-time.Hour), start))

	assert.True(t, appointment.Overlaps(start.Add(59*time.Minute), start.Add(90*time.Minute)))
	assert.True(t, appointment.Overlaps(start.Add(-30*time.Minute), start.Add(time.Minute)))
	assert.True(t, appointment.Overlaps(start, start.Add(time.Hour)))
}

func TestIsActive(t *testing.T) {
	assert.True(t, (&Appointment{Status: AppointmentScheduled}).IsActive())
	assert.True(t, (&Appointment{Status: AppointmentConfirmed}).IsActive())
	assert.False(t, (&Appointment{Status: AppointmentCompleted}).IsActive())
	assert.False(t, (&Appointment{Status: AppointmentCancelled}).IsActive())
	assert.False(t, (&Appointment{Status: AppointmentNoShow}).IsActive())
}
