package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/AlibekovAA/rhythmix/backend/internal/auth/service"
	authdto "github.com/AlibekovAA/rhythmix/backend/internal/auth/service/dto"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/constants"
	commonhttp "github.com/AlibekovAA/rhythmix/backend/internal/common/http"
	"github.com/AlibekovAA/rhythmix/backend/internal/common/logger"
)

type Registrar interface {
	Register(ctx context.Context, input service.RegisterInput) (authdto.User, error)
	ListUsers(ctx context.Context) ([]authdto.User, error)
}

type registerRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type registerResponse struct {
	User authdto.User `json:"user"`
}

type listUsersResponse struct {
	Users []authdto.User `json:"users"`
}

type Handler struct {
	registrar Registrar
	errors    *commonhttp.ErrorHandler
	log       *logger.Logger
}

func NewHandler(registrar Registrar, requestTimeout time.Duration, log *logger.Logger) http.Handler {
	h := &Handler{
		registrar: registrar,
		errors:    commonhttp.NewErrorHandler(log),
		log:       log,
	}

	withTimeout := commonhttp.WithTimeout(requestTimeout)
	post := commonhttp.RequireMethod(http.MethodPost)
	get := commonhttp.RequireMethod(http.MethodGet)

	mux := http.NewServeMux()
	mux.HandleFunc(constants.RouteHealth, commonhttp.HealthHandler(log))
	mux.HandleFunc(constants.RouteRegister, post(withTimeout(h.register)))
	mux.HandleFunc(constants.RouteUsers, get(withTimeout(h.listUsers)))
	mux.HandleFunc(constants.RouteUsersLegacy, get(withTimeout(h.listUsers)))
	mux.HandleFunc("/", h.notFound)
	return mux
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := commonhttp.DecodeJSON(r, &req); err != nil {
		h.log.WithFields(r.Context(), logger.Fields{
			"action": "register_invalid_json",
		}).Warnf("register failed: invalid json: %v", err)

		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			commonhttp.WriteErrorEnvelope(w, http.StatusRequestEntityTooLarge, commonhttp.CodeRequestTooLarge,
				"request body too large", nil, commonhttp.TraceIDFromContext(r.Context()))
			return
		}
		commonhttp.WriteErrorEnvelope(w, http.StatusBadRequest, commonhttp.CodeInvalidJSON,
			"invalid json", nil, commonhttp.TraceIDFromContext(r.Context()))
		return
	}

	user, err := h.registrar.Register(r.Context(), service.RegisterInput{
		Email:    req.Email,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusCreated, registerResponse{User: user})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.registrar.ListUsers(r.Context())
	if err != nil {
		h.errors.HandleError(w, r, err)
		return
	}

	commonhttp.WriteJSON(w, http.StatusOK, listUsersResponse{Users: users})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	commonhttp.WriteErrorEnvelope(w, http.StatusNotFound, commonhttp.CodeNotFound,
		"Route not found", nil, commonhttp.TraceIDFromContext(r.Context()))
}
