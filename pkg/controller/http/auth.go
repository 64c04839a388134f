package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

type AuthUseCase = usecase.AuthUseCaseInterface

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// writeJSON writes a JSON response with proper error handling
func writeJSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		_ = errutil.Handle(ctx, err, "failed to encode JSON response")
	}
}

// writeError maps a use case error to its status code
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, errutil.StatusCode(err))
}

// decodeJSON reads a JSON body. Numbers are kept as json.Number.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(err, "invalid JSON body", goerr.T(errutil.TagValidation))
	}
	return nil
}

// loginHandler exchanges admin credentials for a bearer token
func loginHandler(authUC AuthUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		session, err := authUC.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusOK, session)
	}
}
