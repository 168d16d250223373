package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"tutor-game-service/internal/app"
	"tutor-game-service/internal/domain"
	"tutor-game-service/internal/infra/memory"
)

type fakeCompleter struct{ reply string }

func (f fakeCompleter) Complete(context.Context, []domain.ChatTurn) (string, error) {
	return f.reply, nil
}

type fakeGenerator struct{ raw string }

func (f fakeGenerator) GenerateRaw(context.Context, string) (string, error) {
	return f.raw, nil
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	users := memory.NewUserStore()
	bank := memory.NewQuestionBank(memory.NewStaticQuestionLoader(memory.DefaultQuestions()), time.Minute)

	accounts := app.NewAccountService(users)
	progress := app.NewProgressService(users, memory.NewGameStore(), memory.NewAttemptStore(), memory.NewMessageStore())
	chat := app.NewChatService(users, memory.NewMessageStore(), memory.NewHistoryStore(20), fakeCompleter{reply: "sure thing"}, "tutor")
	quizzes := app.NewQuizGenService(fakeGenerator{raw: "nonsense"}, bank)

	mux := http.NewServeMux()
	NewHandler(accounts, progress, chat, quizzes).Register(mux)

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post %s: %v", url, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func getStats(t *testing.T, server *httptest.Server, username string) domain.StatsSnapshot {
	t.Helper()
	resp, err := http.Get(server.URL + "/user/get_stats/" + username)
	if err != nil {
		t.Fatalf("get stats: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get stats status %d", resp.StatusCode)
	}
	var snapshot domain.StatsSnapshot
	decodeBody(t, resp, &snapshot)
	return snapshot
}

func TestProgressAndQuizFlow(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/user/register", map[string]string{"username": "alice", "password": "pw123"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// First progress report creates the game and sets the best score.
	resp = postJSON(t, server.URL+"/user/update_game", map[string]interface{}{
		"username": "alice", "game_number": 1, "question_number": 1, "correct_count": 0, "highest_score": 10,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update_game status %d", resp.StatusCode)
	}
	resp.Body.Close()

	snapshot := getStats(t, server, "alice")
	if snapshot.TotalGames != 1 || snapshot.BestScore != 10 {
		t.Fatalf("expected total_games=1 best_score=10, got %+v", snapshot)
	}

	var quizResp saveQuizResultResponse
	resp = postJSON(t, server.URL+"/user/save_quiz_result", map[string]interface{}{
		"username": "alice", "game_number": 1, "question_number": 2,
		"quiz_question": "Q?", "quiz_options": []string{"a", "b", "c", "d"},
		"selected_option": "b", "correct_answer_letter": "B", "correct_answer_text": "b", "is_correct": true,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("save_quiz_result status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &quizResp)
	if !quizResp.IsCorrect || quizResp.CorrectAnswerLetter != "B" || quizResp.CorrectAnswerText != "b" {
		t.Fatalf("unexpected quiz response %+v", quizResp)
	}

	snapshot = getStats(t, server, "alice")
	if snapshot.TotalCorrect != 1 {
		t.Fatalf("expected total_correct=1, got %d", snapshot.TotalCorrect)
	}

	// A lower score must not regress the best.
	resp = postJSON(t, server.URL+"/user/update_game", map[string]interface{}{
		"username": "alice", "game_number": 1, "question_number": 3, "correct_count": 2, "highest_score": 5,
	})
	resp.Body.Close()
	snapshot = getStats(t, server, "alice")
	if snapshot.BestScore != 10 {
		t.Fatalf("best_score regressed to %d", snapshot.BestScore)
	}

	var history quizHistoryResponse
	resp, err := http.Get(server.URL + "/user/quiz_history/alice")
	if err != nil {
		t.Fatalf("quiz history: %v", err)
	}
	decodeBody(t, resp, &history)
	if history.TotalQuizzes != 1 || len(history.Quizzes) != 1 {
		t.Fatalf("expected one quiz in history, got %+v", history)
	}
}

func TestUnknownUserReturns404(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/user/update_game", map[string]interface{}{
		"username": "bob", "game_number": 1, "question_number": 1, "correct_count": 0, "highest_score": 1,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/user/get_stats/bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteAllClearsProgress(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/user/register", map[string]string{"username": "alice", "password": "pw123"})
	resp.Body.Close()
	resp = postJSON(t, server.URL+"/user/update_game", map[string]interface{}{
		"username": "alice", "game_number": 1, "question_number": 1, "correct_count": 0, "highest_score": 10,
	})
	resp.Body.Close()
	resp = postJSON(t, server.URL+"/user/save_quiz_result", map[string]interface{}{
		"username": "alice", "game_number": 1, "question_number": 1,
		"quiz_question": "Q?", "quiz_options": []string{"a", "b", "c", "d"},
		"selected_option": "a", "correct_answer_letter": "A", "correct_answer_text": "a", "is_correct": true,
	})
	resp.Body.Close()

	req, err := http.NewRequest(http.MethodDelete, server.URL+"/user/delete_all_messages/alice", nil)
	if err != nil {
		t.Fatalf("build delete: %v", err)
	}
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete status %d", resp.StatusCode)
	}
	resp.Body.Close()

	snapshot := getStats(t, server, "alice")
	if snapshot.TotalGames != 0 || snapshot.TotalCorrect != 0 {
		t.Fatalf("expected zeroed counters, got %+v", snapshot)
	}
	if len(snapshot.Games) != 0 || len(snapshot.Messages) != 0 {
		t.Fatalf("expected empty games/messages, got %+v", snapshot)
	}
}

func TestLoginStatuses(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/user/register", map[string]string{"username": "alice", "password": "pw123"})
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/user/register", map[string]string{"username": "alice", "password": "other"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate register status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/user/login", map[string]string{"username": "alice", "password": "pw123"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = postJSON(t, server.URL+"/user/login", map[string]string{"username": "alice", "password": "nope"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestGenerateQuizFallsBack(t *testing.T) {
	// The fake generator returns non-JSON, so the bank question comes back.
	server := newTestServer(t)

	var q domain.QuizQuestion
	resp := postJSON(t, server.URL+"/chatbot/generate_quiz", map[string]string{"username": "alice", "context": "we talked about protein"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("generate status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &q)
	if q.Question == "" || len(q.Options) != 4 {
		t.Fatalf("expected fallback question, got %+v", q)
	}
	if q.CorrectAnswerLetter != "A" {
		t.Fatalf("expected letter A for bank question, got %s", q.CorrectAnswerLetter)
	}
}

func TestGameMessagesEndpoint(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/user/register", map[string]string{"username": "alice", "password": "pw123"})
	resp.Body.Close()

	resp, err := http.Get(server.URL + "/user/get_game_messages/alice/1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var msgs gameMessagesResponse
	decodeBody(t, resp, &msgs)
	if msgs.Username != "alice" || msgs.GameNumber != 1 {
		t.Fatalf("unexpected response %+v", msgs)
	}

	resp, err = http.Get(server.URL + "/user/get_game_messages/alice/abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad game number, got %d", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestAskRequiresSession(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/chatbot/ask", map[string]string{"question": "hello"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without session, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	var body map[string]string
	resp = postJSON(t, server.URL+"/chatbot/ask", map[string]string{"session_id": "s1", "question": "hello"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("ask status %d", resp.StatusCode)
	}
	decodeBody(t, resp, &body)
	if body["answer"] != "sure thing" {
		t.Fatalf("unexpected answer %q", body["answer"])
	}
}

func TestStatsListsGamesAscending(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/user/register", map[string]string{"username": "alice", "password": "pw123"})
	resp.Body.Close()
	for _, n := range []int{3, 1, 2} {
		resp = postJSON(t, server.URL+"/user/update_game", map[string]interface{}{
			"username": "alice", "game_number": n, "question_number": 1, "correct_count": 0, "highest_score": n,
		})
		resp.Body.Close()
	}

	snapshot := getStats(t, server, "alice")
	if snapshot.TotalGames != 3 {
		t.Fatalf("expected 3 games, got %d", snapshot.TotalGames)
	}
	for i, game := range snapshot.Games {
		if game.GameNumber != i+1 {
			t.Fatalf("expected ascending order, got %s", fmt.Sprint(snapshot.Games))
		}
	}
}
