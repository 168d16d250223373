package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"tutor-game-service/internal/app"
	"tutor-game-service/internal/domain"
)

// Handler exposes the REST surface of the service.
type Handler struct {
	accounts *app.AccountService
	progress *app.ProgressService
	chat     *app.ChatService
	quizzes  *app.QuizGenService
}

func NewHandler(accounts *app.AccountService, progress *app.ProgressService, chat *app.ChatService, quizzes *app.QuizGenService) *Handler {
	return &Handler{
		accounts: accounts,
		progress: progress,
		chat:     chat,
		quizzes:  quizzes,
	}
}

// Register wires every route onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /user/register", h.register)
	mux.HandleFunc("POST /user/login", h.login)
	mux.HandleFunc("POST /user/update_game", h.updateGame)
	mux.HandleFunc("POST /user/save_quiz_result", h.saveQuizResult)
	mux.HandleFunc("POST /user/save_message", h.saveMessage)
	mux.HandleFunc("GET /user/get_stats/{username}", h.getStats)
	mux.HandleFunc("GET /user/quiz_history/{username}", h.quizHistory)
	mux.HandleFunc("GET /user/get_game_messages/{username}/{game_number}", h.gameMessages)
	mux.HandleFunc("DELETE /user/delete_all_messages/{username}", h.deleteAll)
	mux.HandleFunc("POST /chatbot/ask", h.ask)
	mux.HandleFunc("POST /chatbot/generate_quiz", h.generateQuiz)
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.accounts.Register(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "User registered successfully!"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decode(w, r, &req) {
		return
	}
	if err := h.accounts.Login(r.Context(), req.Username, req.Password); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Login successful!"})
}

type updateGameRequest struct {
	Username       string `json:"username"`
	GameNumber     int    `json:"game_number"`
	QuestionNumber int    `json:"question_number"`
	CorrectCount   int    `json:"correct_count"`
	HighestScore   int    `json:"highest_score"`
}

func (h *Handler) updateGame(w http.ResponseWriter, r *http.Request) {
	var req updateGameRequest
	if !decode(w, r, &req) {
		return
	}
	err := h.progress.ReportProgress(r.Context(), req.Username, req.GameNumber, req.QuestionNumber, req.CorrectCount, req.HighestScore)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Game progress updated successfully!"})
}

type saveQuizResultRequest struct {
	Username            string   `json:"username"`
	GameNumber          int      `json:"game_number"`
	QuestionNumber      int      `json:"question_number"`
	QuizQuestion        string   `json:"quiz_question"`
	QuizOptions         []string `json:"quiz_options"`
	SelectedOption      string   `json:"selected_option"`
	CorrectAnswerLetter string   `json:"correct_answer_letter"`
	CorrectAnswerText   string   `json:"correct_answer_text"`
	IsCorrect           bool     `json:"is_correct"`
}

type saveQuizResultResponse struct {
	Message             string `json:"message"`
	IsCorrect           bool   `json:"is_correct"`
	CorrectAnswerLetter string `json:"correct_answer_letter"`
	CorrectAnswerText   string `json:"correct_answer_text"`
}

func (h *Handler) saveQuizResult(w http.ResponseWriter, r *http.Request) {
	var req saveQuizResultRequest
	if !decode(w, r, &req) {
		return
	}
	result, err := h.progress.RecordQuizResult(r.Context(), req.Username, req.GameNumber, req.QuestionNumber,
		req.QuizQuestion, req.QuizOptions, req.SelectedOption, req.CorrectAnswerLetter, req.CorrectAnswerText, req.IsCorrect)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, saveQuizResultResponse{
		Message:             "Quiz result saved",
		IsCorrect:           result.IsCorrect,
		CorrectAnswerLetter: result.CorrectAnswerLetter,
		CorrectAnswerText:   result.CorrectAnswerText,
	})
}

type saveMessageRequest struct {
	Username       string `json:"username"`
	Text           string `json:"text"`
	GameNumber     int    `json:"game_number"`
	QuestionNumber int    `json:"question_number"`
}

func (h *Handler) saveMessage(w http.ResponseWriter, r *http.Request) {
	var req saveMessageRequest
	if !decode(w, r, &req) {
		return
	}
	msg, err := h.chat.SaveMessage(r.Context(), req.Username, req.Text, req.GameNumber, req.QuestionNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"username":     msg.Username,
		"user_message": msg.UserMessage,
		"bot_response": msg.BotResponse,
		"status":       "Message and response saved successfully",
	})
}

func (h *Handler) getStats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.progress.Stats(r.Context(), r.PathValue("username"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

type quizHistoryResponse struct {
	Username     string               `json:"username"`
	TotalQuizzes int                  `json:"total_quizzes"`
	Quizzes      []domain.QuizAttempt `json:"quizzes"`
}

func (h *Handler) quizHistory(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	attempts, err := h.progress.QuizHistory(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quizHistoryResponse{
		Username:     username,
		TotalQuizzes: len(attempts),
		Quizzes:      attempts,
	})
}

type gameMessagesResponse struct {
	Username   string               `json:"username"`
	GameNumber int                  `json:"game_number"`
	Messages   []domain.ChatMessage `json:"messages"`
}

func (h *Handler) gameMessages(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	gameNumber, err := strconv.Atoi(r.PathValue("game_number"))
	if err != nil {
		http.Error(w, "invalid game number", http.StatusBadRequest)
		return
	}
	msgs, err := h.progress.GameMessages(r.Context(), username, gameNumber)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, gameMessagesResponse{
		Username:   username,
		GameNumber: gameNumber,
		Messages:   msgs,
	})
}

func (h *Handler) deleteAll(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")
	if err := h.progress.DeleteAllForUser(r.Context(), username); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "All conversations deleted for " + username})
}

type askRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if !decode(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		http.Error(w, "missing session_id", http.StatusBadRequest)
		return
	}
	answer, err := h.chat.Ask(r.Context(), req.SessionID, req.Question)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

type generateQuizRequest struct {
	Username string `json:"username"`
	Context  string `json:"context"`
}

func (h *Handler) generateQuiz(w http.ResponseWriter, r *http.Request) {
	var req generateQuizRequest
	if !decode(w, r, &req) {
		return
	}
	question, err := h.quizzes.Generate(r.Context(), req.Context)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, question)
}

func decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrUsernameTaken):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, domain.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, domain.ErrUpstreamService):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		log.Printf("internal error: %v", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}
}
