package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrPollNotActive = errors.New("poll not active")
	ErrInvalidOption = errors.New("invalid option")
	ErrForbidden     = errors.New("forbidden")

	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUserIDTooLong   = errors.New("user id too long")
	ErrInvalidRole     = errors.New("invalid role")

	ErrQuestionEmpty   = errors.New("question empty")
	ErrQuestionTooLong = errors.New("question too long")
	ErrTooFewOptions   = errors.New("too few options")
	ErrTooManyOptions  = errors.New("too many options")
	ErrOptionEmpty     = errors.New("option empty")
	ErrOptionTooLong   = errors.New("option too long")
	ErrInvalidDuration = errors.New("invalid duration")

	ErrMessageEmpty   = errors.New("message empty")
	ErrMessageTooLong = errors.New("message too long")
	ErrRateLimited    = errors.New("rate limited")
)

var codes = []struct {
	err  error
	code string
}{
	{ErrNotFound, "not_found"},
	{ErrPollNotActive, "poll_not_active"},
	{ErrInvalidOption, "invalid_option"},
	{ErrForbidden, "forbidden"},
	{ErrUsernameTooLong, "username_too_long"},
	{ErrUsernameEmpty, "username_empty"},
	{ErrUserIDTooLong, "user_id_too_long"},
	{ErrInvalidRole, "invalid_role"},
	{ErrQuestionEmpty, "question_empty"},
	{ErrQuestionTooLong, "question_too_long"},
	{ErrTooFewOptions, "too_few_options"},
	{ErrTooManyOptions, "too_many_options"},
	{ErrOptionEmpty, "option_empty"},
	{ErrOptionTooLong, "option_too_long"},
	{ErrInvalidDuration, "invalid_duration"},
	{ErrMessageEmpty, "message_empty"},
	{ErrMessageTooLong, "message_too_long"},
	{ErrRateLimited, "rate_limited"},
}

// Code maps a domain error to the short code sent to clients.
func Code(err error) string {
	for _, c := range codes {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return "internal"
}
