package entity

import "time"

// DocumentSequence es el contador monótono por (owner, kind) del que salen los
// números consecutivos. Se incrementa de forma atómica en el data store para
// evitar duplicados bajo envíos concurrentes del mismo owner.
type DocumentSequence struct {
	OwnerID   string
	Kind      string
	Value     int64
	UpdatedAt time.Time
}
