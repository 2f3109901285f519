package storage

import "errors"

// Common storage errors
var (
	// ErrUserNotFound indicates that user was not found in storage
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates that user with this email already exists
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrTokenNotFound indicates that an active refresh token record was not found
	ErrTokenNotFound = errors.New("refresh token not found")

	// ErrTokenAlreadyExists indicates a token hash collision (treated as reuse)
	ErrTokenAlreadyExists = errors.New("refresh token already exists")

	// ErrPortfolioNotFound indicates that portfolio was not found
	ErrPortfolioNotFound = errors.New("portfolio not found")

	// ErrAssetNotFound indicates that asset was not found or is deleted
	ErrAssetNotFound = errors.New("asset not found")
)
