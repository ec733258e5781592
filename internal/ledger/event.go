package ledger

import "time"

const (
	Created EventKind = "created"
	Updated EventKind = "updated"
	Deleted EventKind = "deleted"

	TransactionEntity  Entity = "transaction"
	CardEntity         Entity = "card"
	GoalEntity         Entity = "goal"
	CategoryEntity     Entity = "category"
	ProfileEntity      Entity = "profile"
	MonthEntity        Entity = "month"
	NotificationEntity Entity = "notification"
)

type (
	EventKind string
	Entity    string

	// Event tells subscribers that a store changed. IDs lists every affected
	// record for batch operations; ID is the record the caller addressed.
	Event struct {
		UserID   string
		Kind     EventKind
		Entity   Entity
		ID       string
		IDs      []string
		Revision uint64
		At       time.Time
	}
)

// Persistent reports whether the event concerns data held by the repository.
func (e Event) Persistent() bool {
	switch e.Entity {
	case TransactionEntity, CardEntity, GoalEntity, CategoryEntity, ProfileEntity:
		return true
	}
	return false
}
