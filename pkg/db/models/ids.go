package models

import "github.com/google/uuid"

// ensureID fills a zero primary key before insert. Postgres also defaults
// ids via gen_random_uuid(), but sqlite has no equivalent.
func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
