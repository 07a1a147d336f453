package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/katworks/sandstar/internal/domain"
)

const defaultTimeout = 30 * time.Second

// Client talks to the archive server's JSON API. It implements the
// repository interfaces in the domain package. Requests are never retried.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new archive API client
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// BaseURL returns the server root without a trailing slash
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs one HTTP request against the archive API. credential,
// when set, is sent verbatim in the Authorization header.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, credential string) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL = reqURL + "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != "" {
		reqBody = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", credential)
	}

	c.logger.Debug("archive request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("archive request failed", "path", path, "error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return respBody, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, domain.ErrUnauthorized
	case http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		c.logger.Error("archive request error", "status", resp.StatusCode, "path", path, "body", string(respBody))
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}
}

func getJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var out T
	body, err := c.doRequest(ctx, http.MethodGet, path, query, "", "")
	if err != nil {
		return out, err
	}
	// Java serialises a missing record as "null"
	if string(body) == "null" {
		return out, domain.ErrNotFound
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("failed to parse response: %w", err)
	}
	return out, nil
}

// GetRatingCatalog returns the rating labels the server accepts
func (c *Client) GetRatingCatalog(ctx context.Context) (domain.RatingCatalog, error) {
	cfg, err := getJSON[configDTO](ctx, c, "/api/config", nil)
	if err != nil {
		return domain.RatingCatalog{}, err
	}
	return domain.RatingCatalog{
		Content: mapLabels(cfg.Content),
		Safety:  mapLabels(cfg.Safety),
	}, nil
}

// GetPosts returns one page of posts, globally or for one account
func (c *Client) GetPosts(ctx context.Context, accountID string, offset, limit int, filter url.Values) ([]*domain.PostSummary, error) {
	query := url.Values{}
	for k, v := range filter {
		query[k] = append([]string(nil), v...)
	}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	path := "/api/posts/global"
	if accountID != "" {
		path = "/api/posts/" + url.PathEscape(accountID)
	}

	posts, err := getJSON[[]postDTO](ctx, c, path, query)
	if err != nil {
		return nil, err
	}
	return mapPosts(posts), nil
}

// GetPost returns a single post with its media
func (c *Client) GetPost(ctx context.Context, postID string) (*domain.PostSummary, error) {
	post, err := getJSON[*postDTO](ctx, c, "/api/post/"+url.PathEscape(postID), nil)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, domain.ErrNotFound
	}
	return mapPost(*post), nil
}

// GetMedia returns a single media item
func (c *Client) GetMedia(ctx context.Context, mediaID string) (*domain.MediaSummary, error) {
	if _, err := strconv.ParseInt(mediaID, 10, 64); err != nil {
		return nil, fmt.Errorf("invalid media id %q: %w", mediaID, domain.ErrNotFound)
	}
	m, err := getJSON[*mediaDTO](ctx, c, "/api/media/"+mediaID, nil)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.ErrNotFound
	}
	return mapMedia(*m), nil
}

// GetArtists returns every artist
func (c *Client) GetArtists(ctx context.Context) ([]domain.Artist, error) {
	artists, err := getJSON[[]artistDTO](ctx, c, "/api/artists", nil)
	if err != nil {
		return nil, err
	}
	return mapArtists(artists), nil
}

// GetArtist returns an artist by name with aliases and accounts
func (c *Client) GetArtist(ctx context.Context, name string) (*domain.ArtistDetail, error) {
	detail, err := getJSON[*artistDetailDTO](ctx, c, "/api/artists/name/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, domain.ErrNotFound
	}
	return mapArtistDetail(*detail), nil
}

// GetAccount returns a single account
func (c *Client) GetAccount(ctx context.Context, id string) (*domain.Account, error) {
	acc, err := getJSON[*accountDTO](ctx, c, "/api/accounts/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	if acc == nil {
		return nil, domain.ErrNotFound
	}
	out := mapAccount(*acc)
	return &out, nil
}

// SearchArtists matches artist names and aliases
func (c *Client) SearchArtists(ctx context.Context, query string) ([]domain.Artist, error) {
	artists, err := getJSON[[]artistDTO](ctx, c, "/api/artists/search", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return mapArtists(artists), nil
}

// SearchAccounts matches account screen and display names
func (c *Client) SearchAccounts(ctx context.Context, query string) ([]domain.Account, error) {
	accounts, err := getJSON[[]accountDTO](ctx, c, "/api/accounts/search", url.Values{"q": {query}})
	if err != nil {
		return nil, err
	}
	return mapAccounts(accounts), nil
}

// VerifyCode checks an operator code. The code is the raw request body.
func (c *Client) VerifyCode(ctx context.Context, code string) error {
	_, err := c.doRequest(ctx, http.MethodPost, "/api/auth/verify", nil, code, "")
	if errors.Is(err, domain.ErrUnauthorized) {
		return domain.ErrAuthFailed
	}
	return err
}

// RatePost sets one rating of a post
func (c *Client) RatePost(ctx context.Context, credential, postID string, kind domain.RatingKind, value domain.RatingLabel) error {
	query := url.Values{
		"postId": {postID},
		"type":   {kind.String()},
		"value":  {string(value)},
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/api/rate/post", query, "", credential)
	return err
}

// RateMedia sets one rating of a media item
func (c *Client) RateMedia(ctx context.Context, credential, mediaID string, kind domain.RatingKind, value domain.RatingLabel) error {
	query := url.Values{
		"mediaId": {mediaID},
		"type":    {kind.String()},
		"value":   {string(value)},
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/api/rate/media", query, "", credential)
	return err
}

// UpdateCaption replaces the caption of a media item
func (c *Client) UpdateCaption(ctx context.Context, credential, mediaID, caption string) error {
	query := url.Values{
		"mediaId": {mediaID},
		"caption": {caption},
	}
	_, err := c.doRequest(ctx, http.MethodPost, "/api/media/caption", query, "", credential)
	return err
}
