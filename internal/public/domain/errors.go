package domain

import "errors"

var (
	ErrSurveyNotFound     = errors.New("survey not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrAlreadyContributed = errors.New("contribution already exists for this actor")
	ErrAlreadyPublished   = errors.New("survey is already published")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidInput       = errors.New("invalid input")
	ErrPaymentUnsettled   = errors.New("payment has not settled")
	ErrUnavailable        = errors.New("storage temporarily unavailable")
)
