package domain

import "time"

// Stats holds the cached aggregate counters kept on the user document.
// total_games is derived from the game records and repaired on read;
// total_correct is the running sum of correct quiz answers.
type Stats struct {
	TotalGames   int `json:"total_games"`
	TotalCorrect int `json:"total_correct"`
}

// User is a registered player identity with aggregate progress counters.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	BestScore    int       `json:"best_score"`
	Stats        Stats     `json:"stats"`
	CreatedAt    time.Time `json:"created_at"`
}

// GameProgress is the latest known state of one play-through for a user.
// Keyed uniquely by (UserID, GameNumber); created once, then only updated.
type GameProgress struct {
	UserID         string    `json:"user_id"`
	GameNumber     int       `json:"game_number"`
	QuestionNumber int       `json:"question_number"`
	CorrectCount   int       `json:"correct_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// QuizAttempt is an immutable record of one answered quiz question.
type QuizAttempt struct {
	UserID              string    `json:"user_id"`
	Username            string    `json:"username"`
	GameNumber          int       `json:"game_number"`
	QuestionNumber      int       `json:"question_number"`
	QuizQuestion        string    `json:"quiz_question"`
	QuizOptions         []string  `json:"quiz_options"`
	SelectedOption      string    `json:"selected_option"`
	CorrectAnswerLetter string    `json:"correct_answer_letter"`
	CorrectAnswerText   string    `json:"correct_answer_text"`
	IsCorrect           bool      `json:"is_correct"`
	CreatedAt           time.Time `json:"created_at"`
}

// ChatMessage records one tutor exchange tied to a game question.
type ChatMessage struct {
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	UserMessage    string    `json:"user_message"`
	BotResponse    string    `json:"bot_response"`
	GameNumber     int       `json:"game_number"`
	QuestionNumber int       `json:"question_number"`
	CreatedAt      time.Time `json:"created_at"`
}

// ChatTurn is one turn of a tutoring conversation.
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat turn roles understood by the completion collaborator.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// QuizQuestion is a validated multiple-choice question with exactly
// four options and the canonical answer in both letter and text form.
type QuizQuestion struct {
	Question            string   `json:"question"`
	Options             []string `json:"options"`
	CorrectAnswerLetter string   `json:"correct_answer_letter"`
	CorrectAnswerText   string   `json:"correct_answer_text"`
}

// FallbackQuestion is a curated default quiz question, substituted whenever
// the generation collaborator returns something unusable. Mirrors the JSON
// shape the collaborator is asked to produce.
type FallbackQuestion struct {
	Question           string   `json:"question"`
	Options            []string `json:"options"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
}

// StatsSnapshot is the read-repaired view returned by the stats endpoint.
type StatsSnapshot struct {
	Username     string         `json:"username"`
	BestScore    int            `json:"best_score"`
	TotalGames   int            `json:"total_games"`
	TotalCorrect int            `json:"total_correct"`
	Games        []GameProgress `json:"games"`
	Messages     []ChatMessage  `json:"messages"`
}

// QuizResult echoes the outcome of a recorded attempt so the caller can
// render feedback without re-deriving the canonical answer.
type QuizResult struct {
	IsCorrect           bool   `json:"is_correct"`
	CorrectAnswerLetter string `json:"correct_answer_letter"`
	CorrectAnswerText   string `json:"correct_answer_text"`
}
