// Package profile resolves a game account UID to public profile data.
// Two implementations exist: a remote client for a third-party player
// info API and a local mock that fabricates stable data from the UID.
package profile

import (
	"context"
	"errors"
)

type Profile struct {
	Nickname  string `json:"nickname"`
	UID       string `json:"uid"`
	Region    string `json:"region"`
	Level     int64  `json:"level"`
	Rank      string `json:"rank"`
	Likes     int64  `json:"likes"`
	Bio       string `json:"bio"`
	AvatarURL string `json:"avatar"`
}

var (
	// ErrNotFound means the upstream answered but does not know the UID.
	ErrNotFound = errors.New("profile not found")
	// ErrUnavailable covers network errors, timeouts and malformed payloads.
	ErrUnavailable = errors.New("profile service unavailable")
)

// Lookup is the pluggable fetch strategy selected by configuration.
type Lookup interface {
	Fetch(ctx context.Context, uid, region string) (Profile, error)
}
