package db

import "database/sql"

type KvStore struct {
	Key       string
	Value     []byte
	ExpiresAt sql.NullInt64
	CreatedAt int64
	UpdatedAt int64
}

type RemovedItem struct {
	ItemID    int64
	Name      string
	RemovedAt int64
}
