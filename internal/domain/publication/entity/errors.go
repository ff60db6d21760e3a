package entity

import "errors"

// Domain errors for publication
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostNotDeletable = errors.New("published posts stay in history and cannot be deleted")
	ErrNoTargets        = errors.New("a submission needs at least one target")
	ErrNoContent        = errors.New("a submission needs text or media")

	// Graph API errors surfaced through the publishing flow
	ErrGraphUnauthorized = errors.New("access token is invalid or expired")
	ErrGraphRateLimited  = errors.New("graph API rate limit exceeded")
)
