package model

import "time"

// Dataset describes one cached source file: where it came from, what it
// looked like when loaded, and which optional columns it carried. The
// fingerprint detects source changes so a stale cache can be reloaded.
type Dataset struct {
	LoadedAt    time.Time
	Path        string
	Fingerprint string
	Schema      Schema
	RowCount    int
}
