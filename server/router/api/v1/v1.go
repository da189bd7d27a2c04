// Package v1 exposes the REST API: authentication, conversation CRUD
// and the chat endpoint that feeds the dispatcher.
package v1

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/lithammer/shortuuid/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/sweax/sweax/internal/observability"
	"github.com/sweax/sweax/internal/profile"
	"github.com/sweax/sweax/server/auth"
	"github.com/sweax/sweax/server/chat"
	"github.com/sweax/sweax/server/middleware"
	"github.com/sweax/sweax/store"
)

const userIDContextKey = "user-id"

type APIV1Service struct {
	Secret     string
	Profile    *profile.Profile
	Store      *store.Store
	Dispatcher *chat.Dispatcher

	limiter *middleware.RateLimiter
}

func NewAPIV1Service(secret string, profile *profile.Profile, store *store.Store, dispatcher *chat.Dispatcher) *APIV1Service {
	return &APIV1Service{
		Secret:     secret,
		Profile:    profile,
		Store:      store,
		Dispatcher: dispatcher,
		limiter:    middleware.NewRateLimiter(),
	}
}

// Register mounts all /api/v1 routes on the echo instance.
func (s *APIV1Service) Register(e *echo.Echo) {
	g := e.Group("/api/v1")
	g.POST("/auth/signup", s.Signup)
	g.POST("/auth/login", s.Login)

	authed := g.Group("", s.authMiddleware)
	authed.GET("/conversations", s.ListConversations)
	authed.POST("/conversations", s.CreateConversation)
	authed.GET("/conversations/:id/messages", s.ListMessages)
	authed.POST("/chat", s.Chat)
}

func (s *APIV1Service) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := ""
		if cookie, err := c.Cookie(auth.CookieName); err == nil {
			token = cookie.Value
		}
		if token == "" {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if strings.HasPrefix(header, "Bearer ") {
				token = strings.TrimPrefix(header, "Bearer ")
			}
		}
		if token == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "oturum bulunamadı")
		}

		userID, err := auth.ValidateAccessToken(token, s.Secret)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "geçersiz oturum")
		}
		c.Set(userIDContextKey, userID)
		return next(c)
	}
}

func currentUserID(c echo.Context) int32 {
	id, _ := c.Get(userIDContextKey).(int32)
	return id
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	UserID      int32  `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

func (s *APIV1Service) Signup(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "geçersiz istek")
	}
	if req.Username == "" || len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "kullanıcı adı ve en az 6 karakterlik şifre gerekli")
	}

	ctx := c.Request().Context()
	existing, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "kayıt başarısız")
	}
	if existing != nil {
		return echo.NewHTTPError(http.StatusConflict, "bu kullanıcı adı alınmış")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "kayıt başarısız")
	}

	user, err := s.Store.CreateUser(ctx, &store.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         store.UserRoleUser,
		CreatedTs:    time.Now().Unix(),
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "kayıt başarısız")
	}

	return s.issueSession(c, user)
}

func (s *APIV1Service) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "geçersiz istek")
	}

	ctx := c.Request().Context()
	user, err := s.Store.GetUser(ctx, &store.FindUser{Username: &req.Username})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "giriş başarısız")
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "kullanıcı adı veya şifre hatalı")
	}

	return s.issueSession(c, user)
}

func (s *APIV1Service) issueSession(c echo.Context, user *store.User) error {
	token, err := auth.GenerateAccessToken(user.ID, s.Secret)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "oturum açılamadı")
	}

	c.SetCookie(&http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.AccessTokenDuration),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
	return c.JSON(http.StatusOK, &authResponse{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: token,
	})
}

type conversationResponse struct {
	ID        int32  `json:"id"`
	UID       string `json:"uid"`
	Title     string `json:"title"`
	UpdatedTs int64  `json:"updated_ts"`
}

func (s *APIV1Service) ListConversations(c echo.Context) error {
	userID := currentUserID(c)
	archived := false
	list, err := s.Store.ListConversations(c.Request().Context(), &store.FindConversation{
		CreatorID: &userID,
		Archived:  &archived,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "konuşmalar alınamadı")
	}

	resp := make([]*conversationResponse, 0, len(list))
	for _, conversation := range list {
		resp = append(resp, &conversationResponse{
			ID:        conversation.ID,
			UID:       conversation.UID,
			Title:     conversation.Title,
			UpdatedTs: conversation.UpdatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type createConversationRequest struct {
	Title string `json:"title"`
}

func (s *APIV1Service) CreateConversation(c echo.Context) error {
	var req createConversationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "geçersiz istek")
	}

	now := time.Now().Unix()
	conversation, err := s.Store.CreateConversation(c.Request().Context(), &store.Conversation{
		UID:       shortuuid.New(),
		CreatorID: currentUserID(c),
		Title:     req.Title,
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "konuşma oluşturulamadı")
	}
	return c.JSON(http.StatusOK, &conversationResponse{
		ID:        conversation.ID,
		UID:       conversation.UID,
		Title:     conversation.Title,
		UpdatedTs: conversation.UpdatedTs,
	})
}

type messageResponse struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	CreatedTs int64  `json:"created_ts"`
}

func (s *APIV1Service) ListMessages(c echo.Context) error {
	conversationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "geçersiz konuşma kimliği")
	}

	conversation, err := s.ownedConversation(c, int32(conversationID))
	if err != nil {
		return err
	}

	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "geçersiz limit")
		}
		limit = parsed
	}

	messages, err := s.Store.ListRecentMessages(c.Request().Context(), conversation.ID, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "mesajlar alınamadı")
	}

	resp := make([]*messageResponse, 0, len(messages))
	for _, m := range messages {
		resp = append(resp, &messageResponse{
			Role:      string(m.Role),
			Content:   m.Content,
			CreatedTs: m.CreatedTs,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type chatRequest struct {
	ConversationID int32  `json:"conversation_id"`
	Text           string `json:"text"`
}

type chatResponse struct {
	ConversationID int32  `json:"conversation_id"`
	Answer         string `json:"answer"`
}

func (s *APIV1Service) Chat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "geçersiz istek")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "mesaj boş olamaz")
	}

	userID := currentUserID(c)
	if !s.limiter.Allow(strconv.Itoa(int(userID))) {
		return echo.NewHTTPError(http.StatusTooManyRequests, "çok hızlı yazıyorsun, biraz yavaşla")
	}

	ctx := c.Request().Context()
	conversation, err := s.resolveConversation(c, req.ConversationID)
	if err != nil {
		return err
	}

	reqCtx := observability.NewRequestContext(slog.Default(), userID, conversation.ID)
	ctx = observability.WithRequestContext(ctx, reqCtx)

	answer := s.Dispatcher.Speak(ctx, conversation.ID, req.Text)
	return c.JSON(http.StatusOK, &chatResponse{
		ConversationID: conversation.ID,
		Answer:         answer,
	})
}

// resolveConversation picks the target conversation for a chat turn:
// an explicitly named one (ownership checked), otherwise the user's
// most recently updated active conversation, otherwise a fresh one.
func (s *APIV1Service) resolveConversation(c echo.Context, conversationID int32) (*store.Conversation, error) {
	if conversationID != 0 {
		return s.ownedConversation(c, conversationID)
	}

	ctx := c.Request().Context()
	userID := currentUserID(c)
	archived := false
	list, err := s.Store.ListConversations(ctx, &store.FindConversation{
		CreatorID: &userID,
		Archived:  &archived,
	})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "konuşma bulunamadı")
	}
	if len(list) > 0 {
		return list[0], nil
	}

	now := time.Now().Unix()
	conversation, err := s.Store.CreateConversation(ctx, &store.Conversation{
		UID:       shortuuid.New(),
		CreatorID: userID,
		Title:     "Sohbet",
		CreatedTs: now,
		UpdatedTs: now,
	})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "konuşma oluşturulamadı")
	}
	return conversation, nil
}

func (s *APIV1Service) ownedConversation(c echo.Context, conversationID int32) (*store.Conversation, error) {
	conversation, err := s.Store.GetConversation(c.Request().Context(), &store.FindConversation{ID: &conversationID})
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "konuşma alınamadı")
	}
	if conversation == nil || conversation.CreatorID != currentUserID(c) {
		return nil, echo.NewHTTPError(http.StatusNotFound, "konuşma bulunamadı")
	}
	return conversation, nil
}
