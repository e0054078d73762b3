package domain

import "time"

// ConsentRecord captures that the user accepted the data-modification
// disclaimer for one game scope at a specific version of the consent text.
// A bumped version requires fresh consent; the text hash pins the exact
// wording that was shown.
type ConsentRecord struct {
	GameScope       string
	ConsentVersion  int
	ConsentTextHash string
	AcceptedAt      time.Time
}
