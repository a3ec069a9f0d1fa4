package models

// User is reference data that issues, comments and projects point at.
type User struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}

// Category classifies projects.
type Category struct {
	ID   string `db:"id"`
	Name string `db:"name"`
}
