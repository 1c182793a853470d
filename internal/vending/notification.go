package vending

import "github.com/roach88/cinebox/internal/catalog"

// NotificationKind tags the variant carried by a Notification.
type NotificationKind string

const (
	// KindCreditUpdate reports the balance after a coin or a return.
	KindCreditUpdate NotificationKind = "credit_update"
	// KindReturnConfirmed reports the amount handed back on Return.
	KindReturnConfirmed NotificationKind = "return_confirmed"
	// KindBrowseDisplay shows the session under the cursor.
	KindBrowseDisplay NotificationKind = "browse_display"
	// KindTicketIssued reports a successful purchase.
	KindTicketIssued NotificationKind = "ticket_issued"
	// KindTicketRefused reports a Select with insufficient credit.
	KindTicketRefused NotificationKind = "ticket_refused"
)

// Valid reports whether k is one of the declared kinds.
func (k NotificationKind) Valid() bool {
	switch k {
	case KindCreditUpdate, KindReturnConfirmed, KindBrowseDisplay, KindTicketIssued, KindTicketRefused:
		return true
	}
	return false
}

// Notification is the output of one step, rendered by a Sink.
//
// Fields used per kind:
//   - credit_update: Credit
//   - return_confirmed: Amount (returned), Credit (always 0)
//   - browse_display: Cursor, Session, Credit
//   - ticket_issued: Cursor, Session, Amount (price), Credit (remaining), TicketID
//   - ticket_refused: Cursor, Session, Amount (price), Credit
type Notification struct {
	Kind     NotificationKind      `json:"kind"`
	Credit   int                   `json:"credit"`
	Amount   int                   `json:"amount,omitempty"`
	Cursor   int                   `json:"cursor"`
	Session  *catalog.MovieSession `json:"session,omitempty"`
	TicketID string                `json:"ticket_id,omitempty"`
}

// ToMap converts the notification to a canonical-JSON friendly map.
func (n Notification) ToMap() map[string]any {
	m := map[string]any{
		"kind":   string(n.Kind),
		"credit": n.Credit,
		"cursor": n.Cursor,
	}
	if n.Amount != 0 {
		m["amount"] = n.Amount
	}
	if n.Session != nil {
		m["session"] = n.Session.ToMap()
	}
	if n.TicketID != "" {
		m["ticket_id"] = n.TicketID
	}
	return m
}

// SameOutcome reports whether n and other describe the same result, ignoring
// the ticket ID, which is assigned outside Step.
func (n Notification) SameOutcome(other Notification) bool {
	if n.Kind != other.Kind || n.Credit != other.Credit ||
		n.Amount != other.Amount || n.Cursor != other.Cursor {
		return false
	}
	if (n.Session == nil) != (other.Session == nil) {
		return false
	}
	return n.Session == nil || *n.Session == *other.Session
}

func creditUpdate(ms *MachineState) Notification {
	return Notification{Kind: KindCreditUpdate, Credit: ms.Credit, Cursor: ms.Cursor}
}

func returnConfirmed(ms *MachineState, amount int) Notification {
	return Notification{Kind: KindReturnConfirmed, Credit: ms.Credit, Amount: amount, Cursor: ms.Cursor}
}

func browseDisplay(cat *catalog.Catalog, ms *MachineState) Notification {
	s := cat.At(ms.Cursor)
	return Notification{Kind: KindBrowseDisplay, Credit: ms.Credit, Cursor: ms.Cursor, Session: &s}
}

func ticketOutcome(kind NotificationKind, s catalog.MovieSession, ms *MachineState) Notification {
	return Notification{Kind: kind, Credit: ms.Credit, Amount: s.Price, Cursor: ms.Cursor, Session: &s}
}
