package models

import "time"

const MaxCommentLength = 500

type Author struct {
	ID    string
	Name  string
	Email string
}

type Comment struct {
	ID        string
	Content   string
	AuthorID  string
	Author    *Author
	CreatedAt time.Time
	UpdatedAt time.Time
}
