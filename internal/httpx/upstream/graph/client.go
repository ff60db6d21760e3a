package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultBaseURL    = "https://graph.facebook.com"
	defaultAPIVersion = "v21.0"
	defaultTimeout    = 30 * time.Second
)

// Client is a Meta Graph API client covering the Facebook page/group and
// Instagram publishing surfaces
type Client struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

// ClientOption is a function that configures the Client
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithAPIVersion sets the API version
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) {
		c.apiVersion = version
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new Graph API client
func New(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		apiVersion: defaultAPIVersion,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an error from the Graph API
type APIError struct {
	Message      string `json:"message"`
	Type         string `json:"type"`
	Code         int    `json:"code"`
	ErrorSubcode int    `json:"error_subcode"`
	FBTraceID    string `json:"fbtrace_id"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API error: %s (code: %d, subcode: %d)", e.Message, e.Code, e.ErrorSubcode)
}

// ErrorResponse represents an error response from the API
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// UserInfo represents basic profile data for the authenticated user
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// GetUserInfo retrieves the authenticated user's profile
// GET /me
func (c *Client) GetUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,email")

	var out UserInfo
	if err := c.get(ctx, "me", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PageData represents a Facebook page as returned by the API
type PageData struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category,omitempty"`
	AccessToken   string `json:"access_token,omitempty"`
	FollowerCount int    `json:"followers_count,omitempty"`
}

// GroupData represents a Facebook group as returned by the API
type GroupData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Privacy     string `json:"privacy,omitempty"`
	MemberCount int    `json:"member_count,omitempty"`
}

// InstagramAccountData represents an Instagram business account
type InstagramAccountData struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FollowerCount int    `json:"followers_count,omitempty"`
}

// BusinessData represents a Business Manager entry
type BusinessData struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	VerificationStatus string `json:"verification_status,omitempty"`
}

type pagedList[T any] struct {
	Data []T `json:"data"`
}

// GetUserPages retrieves the pages the user administers
// GET /me/accounts
func (c *Client) GetUserPages(ctx context.Context, accessToken string) ([]PageData, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,category,access_token,followers_count")

	var out pagedList[PageData]
	if err := c.get(ctx, "me/accounts", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetUserGroups retrieves the groups the user can publish to
// GET /me/groups
func (c *Client) GetUserGroups(ctx context.Context, accessToken string) ([]GroupData, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,privacy,member_count")

	var out pagedList[GroupData]
	if err := c.get(ctx, "me/groups", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetUserBusinesses retrieves the user's Business Manager entries
// GET /me/businesses
func (c *Client) GetUserBusinesses(ctx context.Context, accessToken string) ([]BusinessData, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,verification_status")

	var out pagedList[BusinessData]
	if err := c.get(ctx, "me/businesses", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetBusinessPages retrieves the pages owned by a business
// GET /{business-id}/owned_pages
func (c *Client) GetBusinessPages(ctx context.Context, businessID, accessToken string) ([]PageData, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "id,name,category,access_token,followers_count")

	var out pagedList[PageData]
	if err := c.get(ctx, businessID+"/owned_pages", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetPageGroups retrieves the groups a page is linked to
// GET /{page-id}/groups
func (c *Client) GetPageGroups(ctx context.Context, pageID, pageToken string) ([]GroupData, error) {
	params := url.Values{}
	params.Set("access_token", pageToken)
	params.Set("fields", "id,name,privacy,member_count")

	var out pagedList[GroupData]
	if err := c.get(ctx, pageID+"/groups", params, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// GetPageInstagramAccount retrieves the Instagram business account linked to
// a page, or nil when the page has none
// GET /{page-id}?fields=instagram_business_account
func (c *Client) GetPageInstagramAccount(ctx context.Context, pageID, accessToken string) (*InstagramAccountData, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "instagram_business_account{id,username,followers_count}")

	var out struct {
		InstagramBusinessAccount *InstagramAccountData `json:"instagram_business_account"`
	}
	if err := c.get(ctx, pageID, params, &out); err != nil {
		return nil, err
	}
	return out.InstagramBusinessAccount, nil
}

// PublishPageFeedInput represents input for a page feed post
type PublishPageFeedInput struct {
	PageID      string
	AccessToken string
	Message     string
	Link        string
	ScheduledAt *time.Time
}

// PublishOutput represents a created Graph object id
type PublishOutput struct {
	ID     string `json:"id"`
	PostID string `json:"post_id,omitempty"`
}

// PublishPageFeed publishes a text (optionally link) post to a page feed
// POST /{page-id}/feed
func (c *Client) PublishPageFeed(ctx context.Context, in PublishPageFeedInput) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("message", in.Message)
	if in.Link != "" {
		params.Set("link", in.Link)
	}
	if in.ScheduledAt != nil {
		params.Set("published", "false")
		params.Set("scheduled_publish_time", strconv.FormatInt(in.ScheduledAt.Unix(), 10))
	}

	var out PublishOutput
	if err := c.post(ctx, in.PageID+"/feed", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishPagePhotoInput represents input for a page photo post
type PublishPagePhotoInput struct {
	PageID      string
	AccessToken string
	ImageURL    string
	Caption     string
	// Unpublished photos are attached to a feed post instead of being
	// posted on their own
	Published   bool
	ScheduledAt *time.Time
}

// PublishPagePhoto publishes a photo to a page
// POST /{page-id}/photos
func (c *Client) PublishPagePhoto(ctx context.Context, in PublishPagePhotoInput) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("url", in.ImageURL)
	if in.Caption != "" {
		params.Set("caption", in.Caption)
	}
	params.Set("published", strconv.FormatBool(in.Published))
	if in.ScheduledAt != nil {
		params.Set("published", "false")
		params.Set("scheduled_publish_time", strconv.FormatInt(in.ScheduledAt.Unix(), 10))
	}

	var out PublishOutput
	if err := c.post(ctx, in.PageID+"/photos", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishPageVideoInput represents input for a page video post
type PublishPageVideoInput struct {
	PageID      string
	AccessToken string
	VideoURL    string
	Description string
}

// PublishPageVideo publishes a video to a page by URL
// POST /{page-id}/videos
func (c *Client) PublishPageVideo(ctx context.Context, in PublishPageVideoInput) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("file_url", in.VideoURL)
	if in.Description != "" {
		params.Set("description", in.Description)
	}

	var out PublishOutput
	if err := c.post(ctx, in.PageID+"/videos", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishGroupFeedInput represents input for a group feed post
type PublishGroupFeedInput struct {
	GroupID     string
	AccessToken string
	Message     string
	Link        string
}

// PublishGroupFeed publishes a post to a group feed
// POST /{group-id}/feed
func (c *Client) PublishGroupFeed(ctx context.Context, in PublishGroupFeedInput) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("message", in.Message)
	if in.Link != "" {
		params.Set("link", in.Link)
	}

	var out PublishOutput
	if err := c.post(ctx, in.GroupID+"/feed", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCommentInput represents input for commenting on a post
type CreateCommentInput struct {
	PostID      string
	AccessToken string
	Message     string
}

// CreateComment posts a comment on a published object
// POST /{post-id}/comments
func (c *Client) CreateComment(ctx context.Context, in CreateCommentInput) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	params.Set("message", in.Message)

	var out PublishOutput
	if err := c.post(ctx, in.PostID+"/comments", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteObject deletes a published Graph object
// DELETE /{object-id}
func (c *Client) DeleteObject(ctx context.Context, objectID, accessToken string) error {
	params := url.Values{}
	params.Set("access_token", accessToken)

	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, objectID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	var result map[string]interface{}
	return c.do(req, &result)
}

// ContainerStatus represents the status of an Instagram media container
type ContainerStatus string

const (
	ContainerStatusExpired    ContainerStatus = "EXPIRED"
	ContainerStatusError      ContainerStatus = "ERROR"
	ContainerStatusFinished   ContainerStatus = "FINISHED"
	ContainerStatusInProgress ContainerStatus = "IN_PROGRESS"
	ContainerStatusPublished  ContainerStatus = "PUBLISHED"
)

// CreateMediaContainerInput represents input for creating an Instagram media
// container
type CreateMediaContainerInput struct {
	IGUserID    string
	AccessToken string
	ImageURL    string
	VideoURL    string
	Caption     string
}

// CreateMediaContainer creates an Instagram media container
// Step 1 of the Instagram publishing process
func (c *Client) CreateMediaContainer(ctx context.Context, in CreateMediaContainerInput) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", in.AccessToken)
	if in.ImageURL != "" {
		params.Set("image_url", in.ImageURL)
	}
	if in.VideoURL != "" {
		params.Set("video_url", in.VideoURL)
		params.Set("media_type", "REELS")
	}
	if in.Caption != "" {
		params.Set("caption", in.Caption)
	}

	var out PublishOutput
	if err := c.post(ctx, in.IGUserID+"/media", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetContainerStatusOutput represents an Instagram container status response
type GetContainerStatusOutput struct {
	ID           string          `json:"id"`
	Status       ContainerStatus `json:"status_code"`
	ErrorMessage string          `json:"error_message,omitempty"`
}

// GetContainerStatus checks the status of an Instagram media container
// Step 2 of the Instagram publishing process (required for video content)
func (c *Client) GetContainerStatus(ctx context.Context, containerID, accessToken string) (*GetContainerStatusOutput, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("fields", "status_code,error_message")

	var out GetContainerStatusOutput
	if err := c.get(ctx, containerID, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PublishMedia publishes an Instagram media container
// Step 3 of the Instagram publishing process
func (c *Client) PublishMedia(ctx context.Context, igUserID, containerID, accessToken string) (*PublishOutput, error) {
	params := url.Values{}
	params.Set("access_token", accessToken)
	params.Set("creation_id", containerID)

	var out PublishOutput
	if err := c.post(ctx, igUserID+"/media_publish", params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, c.apiVersion, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, out)
}

// do executes an HTTP request and decodes the response
func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	// Check for error response
	if resp.StatusCode >= 400 {
		var errResp ErrorResponse
		if err := json.Unmarshal(body, &errResp); err != nil {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
		}
		return &errResp.Error
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
