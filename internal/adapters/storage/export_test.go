package storage

import "time"

func (s *BlobStore) SetClock(now func() time.Time) {
	s.now = now
}
