package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/plugin/ai"
	"github.com/sweax/sweax/plugin/translate"
	"github.com/sweax/sweax/plugin/websearch"
	"github.com/sweax/sweax/plugin/wiki"
	"github.com/sweax/sweax/server/chat"
	"github.com/sweax/sweax/server/knowledge"
	apiv1 "github.com/sweax/sweax/server/router/api/v1"
	"github.com/sweax/sweax/server/timezone"
	"github.com/sweax/sweax/store"
)

// Server wires the store, the AI provider and the REST API together.
type Server struct {
	Secret  string
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	dispatcher *chat.Dispatcher
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Secret:  profile.Secret,
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomw.Logger())
	echoServer.Use(echomw.Recover())
	echoServer.Use(echomw.CORS())
	s.echoServer = echoServer

	provider := ai.NewProvider(&ai.Config{
		BaseURL:        profile.AIBaseURL,
		APIKey:         profile.AIAPIKey,
		ChatModel:      profile.AIChatModel,
		ReasoningModel: profile.AIReasoningModel,
		EmbeddingModel: profile.AIEmbeddingModel,
	})

	location, err := timezone.ParseTimezone(profile.Timezone)
	if err != nil {
		slog.Warn("invalid timezone, falling back to UTC", "timezone", profile.Timezone)
	}

	knowledgeService := knowledge.NewService(store, provider)
	opts := []chat.Option{
		chat.WithWikiClient(wiki.NewClient(profile.WikiPrimaryLang, profile.WikiFallbackLang)),
		chat.WithSearchClient(websearch.NewClient()),
		chat.WithLocation(location),
	}
	if profile.TranslateBaseURL != "" {
		opts = append(opts, chat.WithTranslateClient(translate.NewClient(profile.TranslateBaseURL, profile.TranslateAPIKey)))
	}
	s.dispatcher = chat.NewDispatcher(store, knowledgeService, provider, opts...)

	if err := s.ensureAdminUser(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to bootstrap admin user")
	}

	apiService := apiv1.NewAPIV1Service(s.Secret, profile, store, s.dispatcher)
	apiService.Register(echoServer)

	echoServer.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "Service ready.")
	})

	return s, nil
}

// Dispatcher exposes the chat pipeline for non-HTTP frontends such as
// the terminal REPL.
func (s *Server) Dispatcher() *chat.Dispatcher {
	return s.dispatcher
}

func (s *Server) Start(_ context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	return s.echoServer.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", "error", err)
	}
	slog.Info("sweax stopped properly")
}

// ensureAdminUser creates the default admin account on first start so
// a fresh instance is immediately usable.
func (s *Server) ensureAdminUser(ctx context.Context) error {
	users, err := s.Store.ListUsers(ctx, &store.FindUser{})
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("sweax123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin, err := s.Store.CreateUser(ctx, &store.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Role:         store.UserRoleAdmin,
		CreatedTs:    time.Now().Unix(),
	})
	if err != nil {
		return err
	}
	slog.Info("created default admin user, change the password after first login", "username", admin.Username)
	return nil
}
