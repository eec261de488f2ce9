package domain

// PrefsStore persists the small key-value state shared by the poll job and the UI.
// Getters return zero values when nothing has been stored yet.
type PrefsStore interface {
	StoredQuery() string
	SetStoredQuery(query string) error

	LastResultID() string
	SetLastResultID(id string) error

	IsPolling() bool
	SetPolling(enabled bool) error

	// State returns a snapshot of all persisted fields
	State() PollState

	Close() error
}
