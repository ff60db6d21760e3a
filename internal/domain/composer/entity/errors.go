package entity

import "errors"

// Domain errors for post composition
var (
	// Validation errors: these block submission before any network dispatch
	ErrNoContent         = errors.New("post needs text or at least one media file")
	ErrNoTarget          = errors.New("no publishing target selected")
	ErrTextTooLong       = errors.New("text exceeds maximum length of 2000 characters")
	ErrTooManyMediaFiles = errors.New("a post cannot carry more than 4 media files")
	ErrMediaTooLarge     = errors.New("media file exceeds maximum size of 100MB")
	ErrInvalidMediaType  = errors.New("media must be an image or a video")
	ErrScheduleTooSoon   = errors.New("scheduled time must be at least 5 minutes from now")

	// Compatibility warnings: overridable with explicit confirmation
	ErrIncompatibleTargets = errors.New("selected targets require media the post does not carry")

	// Selection errors
	ErrPrimaryNotPage      = errors.New("smart mode requires a facebook page as primary target")
	ErrPrimaryNotRemovable = errors.New("the primary target cannot be removed in smart mode")

	// Lifecycle errors
	ErrDraftNotFound      = errors.New("draft not found")
	ErrSubmissionInFlight = errors.New("a submission is already in flight for this draft")
	ErrNotSubmitting      = errors.New("draft has no submission in flight")
)
