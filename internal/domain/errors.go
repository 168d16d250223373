package domain

import "errors"

var (
	// ErrUserNotFound is returned when the identified user does not exist.
	ErrUserNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when registering an existing username.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrInvalidCredentials is returned on a failed login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrGameNotFound indicates no progress record exists for a (user, game) pair.
	ErrGameNotFound = errors.New("game progress not found")
	// ErrUpstreamService indicates the conversational collaborator failed.
	ErrUpstreamService = errors.New("upstream completion service failed")
	// ErrMalformedQuiz indicates the generation collaborator returned output
	// that fails to parse or validate; callers recover with a default question.
	ErrMalformedQuiz = errors.New("malformed generated quiz")
	// ErrQuestionBankEmpty indicates no fallback questions could be loaded.
	ErrQuestionBankEmpty = errors.New("question bank is empty")
)
