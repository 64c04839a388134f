package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/yonnovia/iawashing/pkg/usecase"
	"github.com/yonnovia/iawashing/pkg/utils/errutil"
)

// answersRequiredMessage is shown to respondents when the body has no
// answers object.
const answersRequiredMessage = "Le corps doit contenir un objet \"answers\"."

const feedbackReceivedMessage = "Feedback reçu avec succès."

type submitRequest struct {
	Answers map[string]any `json:"answers"`
	Job     string         `json:"job"`
}

type feedbackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

func questionsHandler(uc *usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(r.Context(), w, http.StatusOK, uc.Questions())
	}
}

func submitHandler(uc *usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req submitRequest
		if err := decodeJSON(r, &req); err != nil || req.Answers == nil {
			opts := []goerr.Option{goerr.T(errutil.TagValidation)}
			if err != nil {
				opts = append(opts, goerr.V("reason", err.Error()))
			}
			writeError(w, r, goerr.New(answersRequiredMessage, opts...))
			return
		}

		result, err := uc.Submit(r.Context(), chi.URLParam(r, "sessionId"), req.Answers, req.Job)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, result)
	}
}

func feedbackHandler(uc *usecase.SurveyUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input usecase.FeedbackInput
		if err := decodeJSON(r, &input); err != nil {
			writeError(w, r, err)
			return
		}

		saved, err := uc.SaveFeedback(r.Context(), chi.URLParam(r, "sessionId"), input)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(r.Context(), w, http.StatusCreated, feedbackResponse{
			Message: feedbackReceivedMessage,
			ID:      saved.ID.String(),
		})
	}
}
