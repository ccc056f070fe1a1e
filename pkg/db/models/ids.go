package models

import "github.com/google/uuid"

// assignID fills a nil primary key so inserts do not rely on a database default.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
