package entity

import "errors"

// Domain errors for the platform catalog
var (
	ErrInvalidTargetKind   = errors.New("invalid target kind")
	ErrInvalidTargetOrigin = errors.New("invalid target origin")
	ErrCatalogNotLoaded    = errors.New("catalog has not been loaded for this user")
	ErrManagerNotFound     = errors.New("business manager not found in catalog")
	ErrTargetNotFound      = errors.New("target not found in catalog")
	ErrAccountNotFound     = errors.New("connected account not found")
)
