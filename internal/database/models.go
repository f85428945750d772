package database

import "time"

// Task represents a deadlined unit of work owned by a single chat. The row is
// never deleted; Complete is the only mutable field and only ever flips from
// false to true, either by user action or by the daily overdue sweep.
type Task struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`

	ChatID   int64  `db:"chat_id"`
	Name     string `db:"name"`
	Deadline string `db:"deadline"` // YYYY-MM-DD, validated before insert
	Complete bool   `db:"complete"`
}
