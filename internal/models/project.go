package models

import "time"

// Project groups issues under a short unique key.
type Project struct {
	ID         string    `db:"id"`
	Name       string    `db:"name"`
	Key        string    `db:"key"`
	Type       string    `db:"type"`
	Avatar     string    `db:"avatar"`
	CategoryID *string   `db:"category_id"`
	LeadID     *string   `db:"lead_id"`
	CreatedAt  time.Time `db:"created_at"`

	// Populated on read.
	CategoryName *string `db:"category_name"`
	LeadName     *string `db:"lead_name"`
}
