package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"postboard/internal/config"
	"postboard/internal/identity"
	"postboard/internal/logger"
	"postboard/internal/models"
	"postboard/internal/service"
)

const maxJSONBody = 1 << 20

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type Handlers struct {
	UserService service.UserService
	AuthService service.AuthService
	PostService service.PostService
	DB          HealthChecker
	Cfg         *config.Config
	Logger      *zap.Logger
}

func NewHandlers(services *service.Service, db HealthChecker, cfg *config.Config, logger *zap.Logger) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		UserService: services.User,
		AuthService: services.Auth,
		PostService: services.Post,
		DB:          db,
		Cfg:         cfg,
		Logger:      logger,
	}
}

// Router registers every route. auth guards the protected ones; browsing a
// topic and reading a single post stay public.
func (h *Handlers) Router(auth func(http.Handler) http.Handler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", h.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Login).Methods(http.MethodPost)
	api.HandleFunc("/posts/{postId}", h.GetPost).Methods(http.MethodGet)
	api.HandleFunc("/topics/{topic}/posts", h.BrowseByTopic).Methods(http.MethodGet)

	protected := api.NewRoute().Subrouter()
	protected.Use(auth)
	protected.HandleFunc("/me", h.GetCurrentUser).Methods(http.MethodGet)
	protected.HandleFunc("/posts", h.CreatePost).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{postId}/like", h.LikePost).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{postId}/dislike", h.DislikePost).Methods(http.MethodPost)
	protected.HandleFunc("/posts/{postId}/comments", h.CommentOn).Methods(http.MethodPost)
	protected.HandleFunc("/topics/{topic}/expired", h.ListExpiredByTopic).Methods(http.MethodGet)
	protected.HandleFunc("/topics/{topic}/most-active", h.MostActiveByTopic).Methods(http.MethodGet)

	if h.Cfg != nil && h.Cfg.MinIO.Enabled {
		protected.HandleFunc("/posts/{postId}/images", h.AddImage).Methods(http.MethodPost)
		protected.HandleFunc("/posts/{postId}/images/{imageId}", h.DeleteImage).Methods(http.MethodDelete)
	}

	return r
}

type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	if h.DB != nil {
		if err := h.DB.HealthCheck(r.Context()); err != nil {
			logger.WithRequestID(r.Context(), h.Logger).Warn("health check failed", zap.Error(err))
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded", Database: "down"})
			return
		}
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Database: "up"})
}

// decodeJSON reads a single JSON object into dst and validates it.
func (h *Handlers) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return models.Validationf("request body is required")
		}
		return models.WrapError(models.KindValidation, "malformed JSON body", err)
	}
	return models.Validate(dst)
}

func callerID(r *http.Request) (string, error) {
	userID, ok := identity.UserID(r.Context())
	if !ok {
		return "", models.ErrMissingToken
	}
	return userID, nil
}
