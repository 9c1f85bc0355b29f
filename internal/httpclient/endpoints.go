package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync"

	"github.com/nyxaria/kmfetch/internal/kerrors"
	"github.com/nyxaria/kmfetch/pkg/models"
	"golang.org/x/sync/errgroup"
)

// GetProfile fetches GET /api/v1/{service}/user/{user_id}/profile.
func (c *Client) GetProfile(ctx context.Context, service, userID string) (models.Profile, error) {
	url := fmt.Sprintf("%s/api/v1/%s/user/%s/profile", c.baseURL, service, userID)
	var p models.Profile
	err := c.doJSON(ctx, http.MethodGet, url, func(body []byte) error {
		return json.Unmarshal(body, &p)
	})
	if err != nil {
		return models.Profile{}, err
	}
	p.Service = service
	p.ArtistID = userID
	return p, nil
}

// GetPosts fetches one page (50 posts) starting at offset.
func (c *Client) GetPosts(ctx context.Context, service, userID string, offset int) ([]models.Post, error) {
	url := fmt.Sprintf("%s/api/v1/%s/user/%s/posts?o=%d", c.baseURL, service, userID, offset)
	var posts []models.Post
	err := c.doJSON(ctx, http.MethodGet, url, func(body []byte) error {
		return json.Unmarshal(body, &posts)
	})
	return posts, err
}

// GetPost fetches a single post's full record.
func (c *Client) GetPost(ctx context.Context, service, userID, postID string) (models.Post, error) {
	url := fmt.Sprintf("%s/api/v1/%s/user/%s/post/%s", c.baseURL, service, userID, postID)
	var wrapper struct {
		Post models.Post `json:"post"`
	}
	err := c.doJSON(ctx, http.MethodGet, url, func(body []byte) error {
		return json.Unmarshal(body, &wrapper)
	})
	return wrapper.Post, err
}

// GetAllPosts fetches the profile to learn the total post count, then
// concurrently fetches ceil(total/50) pages with a bounded pool (<=5),
// merging results back into page order (§4.4 get_all_posts).
func (c *Client) GetAllPosts(ctx context.Context, service, userID string) ([]models.Post, error) {
	profile, err := c.GetProfile(ctx, service, userID)
	if err != nil {
		return nil, err
	}
	if profile.PostCount == 0 {
		return nil, nil
	}
	numPages := int(math.Ceil(float64(profile.PostCount) / float64(postPageSize)))

	pages := make([][]models.Post, numPages)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxPageFetchPool)
	var mu sync.Mutex
	for page := 0; page < numPages; page++ {
		page := page
		g.Go(func() error {
			posts, err := c.GetPosts(gctx, service, userID, page*postPageSize)
			if err != nil {
				return err
			}
			mu.Lock()
			pages[page] = posts
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]models.Post, 0, profile.PostCount)
	for _, page := range pages {
		out = append(out, page...)
	}
	return out, nil
}

// HeadContentLength issues a HEAD request and returns the remote
// Content-Length, or (0, false) if the header is absent.
func (c *Client) HeadContentLength(ctx context.Context, url string) (int64, bool, error) {
	var length int64
	var present bool
	_, err := retryForever(ctx, c, "HEAD:"+url, func() (struct{}, error) {
		reqCtx, cancel := context.WithTimeout(ctx, jsonTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(reqCtx, http.MethodHead, url, nil)
		if err != nil {
			return struct{}{}, kerrors.New(kerrors.Internal, "HeadContentLength", err)
		}
		c.decorate(req)
		resp, err := c.httpClient().Do(req)
		if err != nil {
			return struct{}{}, c.classify("HeadContentLength", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return struct{}{}, kerrors.New(kerrors.RemoteNotFound, "HeadContentLength", fmt.Errorf("status %d", resp.StatusCode))
		}
		if resp.ContentLength >= 0 {
			length = resp.ContentLength
			present = true
		}
		return struct{}{}, nil
	})
	return length, present, err
}
