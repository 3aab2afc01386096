package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"signage-console/internal/domain"
	"signage-console/internal/middleware"
	"signage-console/internal/repository"
	"signage-console/internal/service"
	"signage-console/internal/workflow"
	"signage-console/pkg/jwt"
	"signage-console/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

// writeError maps domain and backend failures onto HTTP responses.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr *service.ValidationError
		apiErr        *repository.APIError
	)

	switch {
	case errors.Is(err, service.ErrNotAuthenticated):
		notAuthenticated(w, r)
	case errors.As(err, &validationErr):
		response.BadRequest(w, validationErr.Error())
	case errors.Is(err, service.ErrActionNotAllowed):
		response.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidAction):
		response.BadRequest(w, err.Error())
	case errors.Is(err, workflow.ErrWorkflowNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, workflow.ErrWorkflowState):
		response.Conflict(w, err.Error())
	case errors.As(err, &apiErr):
		if apiErr.Status == http.StatusUnauthorized {
			notAuthenticated(w, r)
			return
		}
		response.BadGateway(w, apiErr.Message)
	case errors.Is(err, repository.ErrMissingCampaignID), errors.Is(err, jwt.ErrMissingAccount):
		response.BadGateway(w, err.Error())
	default:
		log.Printf("[HANDLER] %s %s: %v", r.Method, r.URL.Path, err)
		response.InternalError(w, "Something went wrong")
	}
}

// unauthenticated reports whether err means the session can no longer call the
// backend, either from the token layer or from a 401 the backend sent itself.
func unauthenticated(err error) bool {
	if errors.Is(err, service.ErrNotAuthenticated) {
		return true
	}
	var apiErr *repository.APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

func notAuthenticated(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		http.Redirect(w, r, middleware.LoginPath, http.StatusSeeOther)
		return
	}
	response.Unauthorized(w, "Not authenticated", middleware.LoginPath)
}

// decodeBody reads a JSON body and validates it. An empty body is accepted
// when optional is set.
func decodeBody(r *http.Request, v interface{}, validate *validator.Validate, optional bool) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !(optional && errors.Is(err, io.EOF)) {
			return &service.ValidationError{Message: "Invalid request body"}
		}
	}

	if err := validate.Struct(v); err != nil {
		return &service.ValidationError{Message: err.Error()}
	}
	return nil
}

func campaignID(r *http.Request) domain.ID {
	return domain.ID(mux.Vars(r)["id"])
}
