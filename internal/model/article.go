package model

import "time"

type Article struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Content     string    `json:"content"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Tags        []string  `json:"tags"`
	Published   bool      `json:"published"`
	PublishedAt time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ArticleFilter narrows public article listings.
type ArticleFilter struct {
	Tag           string
	PublishedOnly bool
	Page          int
	Limit         int
}
