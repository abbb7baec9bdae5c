package domain

import "time"

// Article is a blog post served by the content backend. Body carries
// CMS-rendered HTML; this service passes it through untouched.
type Article struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Path          string    `json:"path"`
	Created       time.Time `json:"created"`
	Body          string    `json:"body"`
	Summary       string    `json:"summary,omitempty"`
	FeaturedImage *Image    `json:"featuredImage,omitempty"`
	Author        string    `json:"author,omitempty"`
}

type Page struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Path      string `json:"path"`
	Body      string `json:"body"`
	HeroImage *Image `json:"heroImage,omitempty"`
}
