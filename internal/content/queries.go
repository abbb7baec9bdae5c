package content

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nextagencyio/decoupled-commerce/internal/domain"
)

const articlesQuery = `
query GetArticles($first: Int!) {
  nodeArticles(first: $first) {
    nodes {
      id
      title
      path
      created {
        timestamp
      }
      body {
        processed
        summary
      }
      featuredImage {
        url
        width
        height
        alt
      }
    }
  }
}
`

const articleByPathQuery = `
query GetArticleByPath($path: String!) {
  route(path: $path) {
    ... on RouteInternal {
      entity {
        ... on NodeArticle {
          id
          title
          path
          created {
            timestamp
          }
          body {
            processed
            summary
          }
          featuredImage {
            url
            width
            height
            alt
          }
        }
      }
    }
  }
}
`

const pageByPathQuery = `
query GetPageByPath($path: String!) {
  route(path: $path) {
    ... on RouteInternal {
      entity {
        ... on NodePage {
          id
          title
          path
          body {
            processed
          }
          heroImage {
            url
            width
            height
            alt
          }
        }
      }
    }
  }
}
`

type contentImage struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Alt    string `json:"alt"`
}

func (i *contentImage) toDomain() *domain.Image {
	if i == nil {
		return nil
	}
	return &domain.Image{URL: i.URL, AltText: i.Alt, Width: i.Width, Height: i.Height}
}

type articleNode struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Path    string `json:"path"`
	Created struct {
		Timestamp int64 `json:"timestamp"`
	} `json:"created"`
	Body struct {
		Processed string `json:"processed"`
		Summary   string `json:"summary"`
	} `json:"body"`
	FeaturedImage *contentImage `json:"featuredImage"`
}

func (n *articleNode) toDomain() domain.Article {
	return domain.Article{
		ID:            n.ID,
		Title:         n.Title,
		Path:          n.Path,
		Created:       time.Unix(n.Created.Timestamp, 0).UTC(),
		Body:          n.Body.Processed,
		Summary:       n.Body.Summary,
		FeaturedImage: n.FeaturedImage.toDomain(),
	}
}

// Articles lists the most recent blog posts.
func (c *Client) Articles(ctx context.Context, first int) ([]domain.Article, error) {
	data, err := c.Execute(ctx, articlesQuery, map[string]any{"first": first})
	if err != nil {
		return nil, err
	}
	var envelope struct {
		NodeArticles struct {
			Nodes []articleNode `json:"nodes"`
		} `json:"nodeArticles"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	out := make([]domain.Article, 0, len(envelope.NodeArticles.Nodes))
	for i := range envelope.NodeArticles.Nodes {
		out = append(out, envelope.NodeArticles.Nodes[i].toDomain())
	}
	return out, nil
}

// ArticleByPath resolves one article through the CMS route system;
// domain.ErrNotFound when the path resolves to nothing.
func (c *Client) ArticleByPath(ctx context.Context, path string) (*domain.Article, error) {
	data, err := c.Execute(ctx, articleByPathQuery, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Route *struct {
			Entity *articleNode `json:"entity"`
		} `json:"route"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	if envelope.Route == nil || envelope.Route.Entity == nil || envelope.Route.Entity.ID == "" {
		return nil, domain.ErrNotFound
	}
	article := envelope.Route.Entity.toDomain()
	return &article, nil
}

// PageByPath resolves one static page; domain.ErrNotFound when absent.
func (c *Client) PageByPath(ctx context.Context, path string) (*domain.Page, error) {
	data, err := c.Execute(ctx, pageByPathQuery, map[string]any{"path": path})
	if err != nil {
		return nil, err
	}
	var envelope struct {
		Route *struct {
			Entity *struct {
				ID    string `json:"id"`
				Title string `json:"title"`
				Path  string `json:"path"`
				Body  struct {
					Processed string `json:"processed"`
				} `json:"body"`
				HeroImage *contentImage `json:"heroImage"`
			} `json:"entity"`
		} `json:"route"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}
	if envelope.Route == nil || envelope.Route.Entity == nil || envelope.Route.Entity.ID == "" {
		return nil, domain.ErrNotFound
	}
	entity := envelope.Route.Entity
	return &domain.Page{
		ID:        entity.ID,
		Title:     entity.Title,
		Path:      entity.Path,
		Body:      entity.Body.Processed,
		HeroImage: entity.HeroImage.toDomain(),
	}, nil
}
