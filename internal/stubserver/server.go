package stubserver

import (
	"fmt"
	"net"
	"time"

	"authgate/internal/config"
	"authgate/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// Server is an Appwrite-compatible stub identity backend: the four account
// endpoints the client uses, nothing more. It exists so development and tests
// do not need a hosted Appwrite project.
type Server struct {
	app      *fiber.App
	cfg      *config.Config
	logger   logger.ILogger
	registry *accountRegistry
}

func New(cfg *config.Config, log logger.ILogger) *Server {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	s := &Server{
		app:      app,
		cfg:      cfg,
		logger:   log,
		registry: newAccountRegistry(time.Duration(cfg.Stub.SessionTTLMin) * time.Minute),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.app.Group("/v1", s.requireProject)
	v1.Post("/account", s.createAccount)
	v1.Post("/account/sessions/email", s.createSession)
	v1.Get("/account", s.getAccount)
	v1.Delete("/account/sessions/current", s.deleteSession)
}

func (s *Server) GetApp() *fiber.App {
	return s.app
}

func (s *Server) Run() error {
	s.logger.Info("stubserver", "stub identity backend listening", map[string]interface{}{
		"port": s.cfg.Stub.Port,
	})
	return s.app.Listen(":" + s.cfg.Stub.Port)
}

// Serve runs the server on an existing listener. Tests use this with a
// localhost listener on port 0.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// requireProject mirrors Appwrite's project scoping. The stub does not track
// projects; it only insists the header is present and reuses its value for
// the session cookie name.
func (s *Server) requireProject(ctx *fiber.Ctx) error {
	if ctx.Get("X-Appwrite-Project") == "" {
		return apiError(ctx, fiber.StatusBadRequest, "general_argument_invalid", "missing X-Appwrite-Project header")
	}
	return ctx.Next()
}

type createAccountRequest struct {
	UserId   string `json:"userId"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type createSessionRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) createAccount(ctx *fiber.Ctx) error {
	var req createAccountRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apiError(ctx, fiber.StatusBadRequest, "general_argument_invalid", "invalid request body")
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		return apiError(ctx, fiber.StatusBadRequest, "general_argument_invalid", "email, password and name are required")
	}
	if len(req.Password) < 8 {
		return apiError(ctx, fiber.StatusBadRequest, "general_argument_invalid", "password must be at least 8 characters")
	}

	acc, err := s.registry.Create(req.Email, req.Password, req.Name)
	if err == errAccountExists {
		return apiError(ctx, fiber.StatusConflict, "user_already_exists", "a user with the same email already exists")
	}
	if err != nil {
		return apiError(ctx, fiber.StatusInternalServerError, "general_server_error", err.Error())
	}

	s.logger.Info("stubserver", "account created", map[string]interface{}{"email": acc.Email})
	return ctx.Status(fiber.StatusCreated).JSON(accountJSON(acc))
}

func (s *Server) createSession(ctx *fiber.Ctx) error {
	var req createSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return apiError(ctx, fiber.StatusBadRequest, "general_argument_invalid", "invalid request body")
	}

	acc, err := s.registry.Authenticate(req.Email, req.Password)
	if err != nil {
		return apiError(ctx, fiber.StatusUnauthorized, "user_invalid_credentials", "invalid credentials")
	}

	sessionId := s.registry.OpenSession(acc.Id)
	expiry := time.Now().Add(time.Duration(s.cfg.Stub.SessionTTLMin) * time.Minute)

	claims := jwt.MapClaims{
		"session_id": sessionId,
		"user_id":    acc.Id,
		"exp":        expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.Stub.SessionSecret))
	if err != nil {
		return apiError(ctx, fiber.StatusInternalServerError, "general_server_error", err.Error())
	}

	ctx.Cookie(&fiber.Cookie{
		Name:     s.cookieName(ctx),
		Value:    signed,
		Expires:  expiry,
		HTTPOnly: true,
	})

	s.logger.Info("stubserver", "session created", map[string]interface{}{"email": acc.Email})
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"$id":    sessionId,
		"userId": acc.Id,
		"expire": expiry.Format(time.RFC3339),
	})
}

func (s *Server) getAccount(ctx *fiber.Ctx) error {
	acc, _, ok := s.currentAccount(ctx)
	if !ok {
		return apiError(ctx, fiber.StatusUnauthorized, "general_unauthorized_scope", "missing scope: account")
	}
	return ctx.JSON(accountJSON(acc))
}

func (s *Server) deleteSession(ctx *fiber.Ctx) error {
	_, sessionId, ok := s.currentAccount(ctx)
	if !ok {
		return apiError(ctx, fiber.StatusUnauthorized, "user_session_not_found", "session not found")
	}

	s.registry.CloseSession(sessionId)
	ctx.Cookie(&fiber.Cookie{
		Name:    s.cookieName(ctx),
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
	})
	return ctx.SendStatus(fiber.StatusNoContent)
}

// currentAccount resolves the session cookie back to a live account.
func (s *Server) currentAccount(ctx *fiber.Ctx) (*account, string, bool) {
	raw := ctx.Cookies(s.cookieName(ctx))
	if raw == "" {
		return nil, "", false
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.Stub.SessionSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, "", false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, "", false
	}
	sessionId, _ := claims["session_id"].(string)

	acc, found := s.registry.ResolveSession(sessionId)
	if !found {
		return nil, "", false
	}
	return acc, sessionId, true
}

func (s *Server) cookieName(ctx *fiber.Ctx) string {
	return fmt.Sprintf("a_session_%s", ctx.Get("X-Appwrite-Project"))
}

func accountJSON(acc *account) fiber.Map {
	return fiber.Map{
		"$id":          acc.Id,
		"name":         acc.Name,
		"email":        acc.Email,
		"registration": acc.CreatedAt.Format(time.RFC3339),
	}
}

func apiError(ctx *fiber.Ctx, status int, errType, message string) error {
	return ctx.Status(status).JSON(fiber.Map{
		"message": message,
		"code":    status,
		"type":    errType,
	})
}
