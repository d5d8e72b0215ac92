package model

// FAQEntry associates a set of trigger keywords with a canned answer.
// Entries are matched in storage order; the first entry with any keyword
// contained in the message wins.
type FAQEntry struct {
	Keywords []string
	Answer   string
}
