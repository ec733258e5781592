// Package services holds the ledger rules that sit on top of the entity
// model: bill dueness classification, notification regeneration and the
// user-facing messages produced by mutations.
//
// Dueness uses a strategy per window: each DueRule decides whether a
// day difference belongs to it and how the resulting alert reads.
package services

import (
	"fmt"
	"sort"
	"time"

	"flux/internal/core"
)

// DueWindow is how many days ahead a planned expense starts raising alerts.
const DueWindow = 7

// DueRule is the strategy interface for one dueness window.
type DueRule interface {
	// Matches reports whether a bill daysLeft days away falls in this window.
	Matches(daysLeft int) bool
	// Notification builds the alert for tx.
	Notification(tx core.Transaction, daysLeft int, now time.Time) core.Notification
}

// OverdueRule matches bills whose date has passed.
type OverdueRule struct{}

func (OverdueRule) Matches(daysLeft int) bool { return daysLeft < 0 }

func (OverdueRule) Notification(tx core.Transaction, _ int, now time.Time) core.Notification {
	return core.Notification{
		ID:      fmt.Sprintf("noti-%s-overdue", tx.ID),
		Message: fmt.Sprintf("Conta \"%s\" está vencida!", tx.Description),
		Date:    now,
		Type:    core.OverdueNotification,
		Link:    tx.ID,
	}
}

// DueTodayRule matches bills dated today.
type DueTodayRule struct{}

func (DueTodayRule) Matches(daysLeft int) bool { return daysLeft == 0 }

func (DueTodayRule) Notification(tx core.Transaction, _ int, now time.Time) core.Notification {
	return dueNotification(tx, fmt.Sprintf("Conta \"%s\" vence hoje.", tx.Description), now)
}

// DueSoonRule matches bills due within Window days.
type DueSoonRule struct {
	Window int
}

func (r DueSoonRule) Matches(daysLeft int) bool { return daysLeft >= 1 && daysLeft <= r.Window }

func (DueSoonRule) Notification(tx core.Transaction, daysLeft int, now time.Time) core.Notification {
	unit := "dias"
	if daysLeft == 1 {
		unit = "dia"
	}
	return dueNotification(tx, fmt.Sprintf("Conta \"%s\" vence em %d %s.", tx.Description, daysLeft, unit), now)
}

func dueNotification(tx core.Transaction, message string, now time.Time) core.Notification {
	return core.Notification{
		ID:      fmt.Sprintf("noti-%s-due", tx.ID),
		Message: message,
		Date:    now,
		Type:    core.DueNotification,
		Link:    tx.ID,
	}
}

// dueRules is evaluated in order; the first matching rule wins.
var dueRules = []DueRule{
	OverdueRule{},
	DueTodayRule{},
	DueSoonRule{Window: DueWindow},
}

// DaysLeft returns the whole days between today and the bill date, both
// taken at UTC midnight.
func DaysLeft(date core.Date, now time.Time) int {
	return core.DateOf(now.UTC()).DaysUntil(date)
}

// Classify returns the rule a bill daysLeft days away falls under.
func Classify(daysLeft int) (DueRule, bool) {
	for _, r := range dueRules {
		if r.Matches(daysLeft) {
			return r, true
		}
	}
	return nil, false
}

// DeriveDueNotifications scans planned expenses and returns a fresh due and
// overdue set, in transaction order.
func DeriveDueNotifications(txs []core.Transaction, now time.Time) []core.Notification {
	var out []core.Notification
	for _, tx := range txs {
		if tx.Type != core.Expense || tx.Status != core.Planned {
			continue
		}
		days := DaysLeft(tx.Date, now)
		rule, ok := Classify(days)
		if !ok {
			continue
		}
		out = append(out, rule.Notification(tx, days, now))
	}
	return out
}

// MergeNotifications drops every due and overdue entry of prev, keeps the
// info entries, appends derived and sorts newest first.
func MergeNotifications(prev, derived []core.Notification) []core.Notification {
	out := make([]core.Notification, 0, len(prev)+len(derived))
	for _, n := range prev {
		if n.Type == core.DueNotification || n.Type == core.OverdueNotification {
			continue
		}
		out = append(out, n)
	}
	out = append(out, derived...)
	SortNotifications(out)
	return out
}

// SortNotifications orders ns by date, newest first. Equal dates keep their
// relative order.
func SortNotifications(ns []core.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		return ns[i].Date.After(ns[j].Date)
	})
}
