// Package notify sends desktop reminders when a streak is about to lapse.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/huangsam/streakline/schema"
)

// AppName is shown by the desktop as the sender of reminders.
const AppName = "streakline"

// Notifier delivers a reminder to the user.
type Notifier interface {
	Notify(title, message string) error
}

// DesktopNotifier sends reminders through the operating system's notification center.
type DesktopNotifier struct {
	// Alert also plays the system sound.
	Alert bool
}

var _ Notifier = DesktopNotifier{} // Compile-time check

// Notify implements the Notifier interface.
func (d DesktopNotifier) Notify(title, message string) error {
	beeep.AppName = AppName
	if d.Alert {
		return beeep.Alert(title, message, "")
	}
	return beeep.Notify(title, message, "")
}

// Reminder is the notification sent for a streak at risk.
type Reminder struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Streak  int    `json:"streak"`
}

// CheckReminder reports whether snap describes a streak that ends unless an entry is
// written today: the streak is alive, and the last active day was yesterday.
func CheckReminder(snap schema.Snapshot, today schema.CalendarDate) (Reminder, bool) {
	if snap.CurrentStreak == 0 || snap.LastActiveDate == nil {
		return Reminder{}, false
	}
	if *snap.LastActiveDate != today.AddDays(-1) {
		return Reminder{}, false
	}

	days := "days"
	if snap.CurrentStreak == 1 {
		days = "day"
	}
	return Reminder{
		Title:   "Keep your streak alive",
		Message: fmt.Sprintf("Your %d %s reflection streak ends tonight. Write a quick entry today!", snap.CurrentStreak, days),
		Streak:  snap.CurrentStreak,
	}, true
}

// Remind sends the reminder for snap when one is due and reports whether it did.
func Remind(n Notifier, snap schema.Snapshot, today schema.CalendarDate) (Reminder, bool, error) {
	reminder, due := CheckReminder(snap, today)
	if !due {
		return Reminder{}, false, nil
	}
	if err := n.Notify(reminder.Title, reminder.Message); err != nil {
		return reminder, false, fmt.Errorf("failed to send reminder: %w", err)
	}
	return reminder, true, nil
}
