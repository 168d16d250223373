package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tutor-game-service/internal/app"
	"tutor-game-service/internal/config"
	"tutor-game-service/internal/domain"
	"tutor-game-service/internal/infra/memory"
	pgstore "tutor-game-service/internal/infra/postgres"
	redisstore "tutor-game-service/internal/infra/redis"
	"tutor-game-service/internal/llm"
	transport "tutor-game-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const defaultSystemPrompt = "You are a helpful tutor chatbot for Meat Science."

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the tutor game server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	var pool *pgxpool.Pool
	if cfg.Postgres.URL != "" {
		pool, err = pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
	}

	var (
		users    app.UserStore
		games    app.GameStore
		attempts app.AttemptStore
		messages app.MessageStore
		history  app.HistoryStore
	)
	historyWindow := cfg.Chat.HistoryWindow
	if historyWindow <= 0 {
		historyWindow = 20
	}
	sessionTTL := config.TTLDuration(cfg.Chat.SessionTTL, 30*time.Minute)
	if redisClient != nil {
		users = redisstore.NewUserStore(redisClient)
		games = redisstore.NewGameStore(redisClient)
		attempts = redisstore.NewAttemptStore(redisClient)
		messages = redisstore.NewMessageStore(redisClient)
		history = redisstore.NewHistoryStore(redisClient, historyWindow, sessionTTL)
	} else {
		users = memory.NewUserStore()
		games = memory.NewGameStore()
		attempts = memory.NewAttemptStore()
		messages = memory.NewMessageStore()
		history = memory.NewHistoryStore(historyWindow)
	}

	var loader memory.QuestionLoader = memory.NewStaticQuestionLoader(memory.DefaultQuestions())
	if pool != nil {
		loader = pgstore.NewQuestionLoader(pool)
	}
	bankTTL := config.TTLDuration(cfg.Quiz.BankTTL, 10*time.Minute)
	var bank app.QuestionBank
	if redisClient != nil {
		bank = redisstore.NewQuestionBank(redisClient, loader, bankTTL)
	} else {
		bank = memory.NewQuestionBank(loader, bankTTL)
	}

	var completer app.Completer = unavailableLLM{}
	var generator app.QuizGenerator = unavailableLLM{}
	if cfg.OpenAI.APIKey != "" {
		client, err := llm.NewClient(llm.Config{
			APIKey:    cfg.OpenAI.APIKey,
			BaseURL:   cfg.OpenAI.BaseURL,
			ChatModel: cfg.OpenAI.ChatModel,
			QuizModel: cfg.OpenAI.QuizModel,
		})
		if err != nil {
			return err
		}
		completer = client
		generator = client
	} else {
		log.Printf("no OpenAI key configured; chat disabled, quizzes use the fallback bank")
	}

	systemPrompt := cfg.Chat.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	accounts := app.NewAccountService(users)
	progress := app.NewProgressService(users, games, attempts, messages)
	chat := app.NewChatService(users, messages, history, completer, systemPrompt)
	quizzes := app.NewQuizGenService(generator, bank)

	handler := transport.NewHandler(accounts, progress, chat, quizzes)
	wsChat := transport.NewWSChatHandler(chat)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	handler.Register(mux)
	mux.HandleFunc("/chatbot/ws", wsChat.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("starting tutor game service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// unavailableLLM stands in when no API key is configured: chat surfaces an
// upstream error and quiz generation falls through to the question bank.
type unavailableLLM struct{}

func (unavailableLLM) Complete(context.Context, []domain.ChatTurn) (string, error) {
	return "", fmt.Errorf("completion service not configured")
}

func (unavailableLLM) GenerateRaw(context.Context, string) (string, error) {
	return "", fmt.Errorf("generation service not configured")
}
