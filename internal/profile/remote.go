package profile

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const remoteTimeout = 3 * time.Second

// Client fetches profiles from a third-party player info endpoint.
// Any transport failure, slow response or unparseable body is reported
// as ErrUnavailable; the caller never sees upstream detail.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		HTTP:    &http.Client{Timeout: remoteTimeout},
	}
}

type remotePayload struct {
	BasicInfo *struct {
		Nickname  string `json:"nickname"`
		Level     int64  `json:"level"`
		Rank      string `json:"rank"`
		Likes     int64  `json:"likes"`
		Signature string `json:"signature"`
	} `json:"basicInfo"`
}

func (c *Client) Fetch(ctx context.Context, uid, region string) (Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/api/v1/player?uid=%s&region=%s", c.BaseURL, url.QueryEscape(uid), url.QueryEscape(region))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Profile{}, ErrUnavailable
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Profile{}, ErrUnavailable
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Profile{}, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, ErrUnavailable
	}

	var payload remotePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Profile{}, ErrUnavailable
	}
	if payload.BasicInfo == nil || strings.TrimSpace(payload.BasicInfo.Nickname) == "" {
		return Profile{}, ErrNotFound
	}

	bio := payload.BasicInfo.Signature
	if bio == "" {
		bio = "No Bio"
	}
	return Profile{
		Nickname:  payload.BasicInfo.Nickname,
		UID:       uid,
		Region:    strings.ToUpper(strings.TrimSpace(region)),
		Level:     payload.BasicInfo.Level,
		Rank:      payload.BasicInfo.Rank,
		Likes:     payload.BasicInfo.Likes,
		Bio:       bio,
		AvatarURL: defaultAvatarURL,
	}, nil
}
