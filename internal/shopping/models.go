package shopping

import "time"

// Entry is one line of the shopping list. Requested is what the user asked
// for; Name is what will be bought, which differs when a healthier
// alternative was accepted.
type Entry struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Requested string    `json:"requested"`
	CreatedAt time.Time `json:"createdAt"`
}

// Substituted reports whether the entry replaced the requested item.
func (e Entry) Substituted() bool {
	return e.Name != e.Requested
}

// AddResult is returned by List.Add. Alternative is the suggestion the
// resolver made, whether or not it was accepted.
type AddResult struct {
	Entry       Entry   `json:"entry"`
	Alternative *string `json:"alternative"`
}
