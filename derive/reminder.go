// ABOUTME: Visit reminder scheduling
// ABOUTME: Derives scheduled_at from the visit date and the minutes-before offset
package derive

import (
	"time"

	"github.com/redpdv/redpdv/models"
)

// ReferenceHour is the UTC hour of day reminders are anchored to. A
// reminder fires MinutesBefore minutes ahead of the visit date at this
// hour, so a 1440-minute reminder for 2025-10-12 lands at
// 2025-10-11T09:00:00Z.
const ReferenceHour = 9

// DefaultMinutesBefore is one day ahead.
const DefaultMinutesBefore = 1440

// ReminderScheduledAt computes when a reminder should fire for a visit
// on the given date.
func ReminderScheduledAt(date time.Time, minutesBefore int) time.Time {
	ref := time.Date(date.Year(), date.Month(), date.Day(), ReferenceHour, 0, 0, 0, time.UTC)
	return ref.Add(-time.Duration(minutesBefore) * time.Minute)
}

// RescheduleReminder recomputes ScheduledAt from the visit's current date
// and offset. The stored timestamp is never trusted after a date or
// offset change.
func RescheduleReminder(v *models.Visit, now time.Time) {
	if v.Reminder.MinutesBefore <= 0 {
		v.Reminder.MinutesBefore = DefaultMinutesBefore
	}
	if v.Reminder.Channel == "" {
		v.Reminder.Channel = "app"
	}
	if v.Reminder.CreatedAt.IsZero() {
		v.Reminder.CreatedAt = now.UTC()
	}
	scheduled := ReminderScheduledAt(v.Date, v.Reminder.MinutesBefore)
	if !scheduled.Equal(v.Reminder.ScheduledAt) {
		v.Reminder.ScheduledAt = scheduled
		v.Reminder.UpdatedAt = now.UTC()
	}
}
