package turso

import "time"

func (r *TranscriptRepository) SetClock(now func() time.Time) {
	r.now = now
}
