package api

import (
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/interviewcoach/backend/internal/auth"
	"github.com/interviewcoach/backend/internal/domain/interview"
	"github.com/interviewcoach/backend/internal/id"
	"github.com/interviewcoach/backend/internal/service"
	"github.com/interviewcoach/backend/internal/speech"
)

const maxAudioBody = 25 << 20

// ── Request / Response types ────────────────────────────────────────────────

type StartSessionRequest struct {
	Mode         string `json:"mode" example:"behavioral"`
	NumQuestions *int   `json:"num_questions,omitempty" example:"5"`
}

func (r *StartSessionRequest) Validate() error {
	if r.Mode == "" {
		return errors.New("mode is required")
	}
	if !interview.Mode(r.Mode).IsValid() {
		return errors.New("invalid mode: must be technical or behavioral")
	}
	return nil
}

type StartSessionResponse struct {
	SessionID    string   `json:"session_id" example:"5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"`
	Mode         string   `json:"mode" example:"behavioral"`
	NumQuestions int      `json:"num_questions" example:"5"`
	Question     string   `json:"question" example:"Tell me about a time you disagreed with a teammate."`
	Transcript   []string `json:"transcript"`
}

type SubmitAnswerRequest struct {
	Answer string `json:"answer" example:"In my last role I..."`
}

func (r *SubmitAnswerRequest) Validate() error {
	if strings.TrimSpace(r.Answer) == "" {
		return errors.New("answer is required")
	}
	return nil
}

// RoundResponse is returned after an answer or a resume. Score and feedback
// are omitted when nothing was graded by the call.
type RoundResponse struct {
	SessionID    string   `json:"session_id" example:"5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"`
	TurnIndex    int      `json:"turn_index,omitempty" example:"1"`
	Score        *int     `json:"score,omitempty" example:"4"`
	Feedback     *string  `json:"feedback,omitempty" example:"Good use of STAR."`
	Degraded     bool     `json:"degraded" example:"false"`
	Done         bool     `json:"done" example:"false"`
	NextQuestion *string  `json:"next_question" example:"How did you measure the outcome?"`
	Transcript   []string `json:"transcript"`
}

type TurnResponse struct {
	Index    int     `json:"index" example:"1"`
	Question string  `json:"question" example:"What is a goroutine?"`
	Answer   *string `json:"answer,omitempty"`
	Score    *int    `json:"score,omitempty" example:"4"`
	Feedback *string `json:"feedback,omitempty"`
}

type SessionResponse struct {
	ID           string         `json:"id" example:"5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"`
	Mode         string         `json:"mode" example:"technical"`
	Status       string         `json:"status" example:"in_progress"`
	NumQuestions int            `json:"num_questions" example:"5"`
	CreatedAt    time.Time      `json:"created_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	Turns        []TurnResponse `json:"turns"`
	Transcript   []string       `json:"transcript"`
}

type SessionListItem struct {
	ID           string     `json:"id" example:"5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"`
	Mode         string     `json:"mode" example:"technical"`
	Status       string     `json:"status" example:"done"`
	NumQuestions int        `json:"num_questions" example:"5"`
	Answered     int        `json:"answered" example:"5"`
	AverageScore *float64   `json:"average_score,omitempty" example:"3.8"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

type EvaluationResponse struct {
	TurnIndex int    `json:"turn_index" example:"1"`
	Score     int    `json:"score" example:"4"`
	Feedback  string `json:"feedback" example:"Good use of STAR."`
}

type SummaryResponse struct {
	SessionID      string               `json:"session_id" example:"5f0c6a52-8a43-4c9e-9d2b-7a3e51f6f0aa"`
	Status         string               `json:"status" example:"done"`
	Questions      []string             `json:"questions"`
	Answers        []string             `json:"answers"`
	Evaluations    []EvaluationResponse `json:"evaluations"`
	CoachingReport string               `json:"coaching_report"`
	CoachingError  string               `json:"coaching_error,omitempty"`
}

// ── Handlers ────────────────────────────────────────────────────────────────

// startSession starts a new interview and returns the first question.
// @Summary      Start an interview session
// @Description  Creates a session and generates question 1. num_questions defaults to the server setting.
// @Tags         Sessions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      StartSessionRequest  true  "Session to start"
// @Success      201   {object}  StartSessionResponse
// @Failure      400   {object}  ErrorResponse
// @Failure      401   {object}  ErrorResponse
// @Failure      502   {object}  ErrorResponse  "question generation failed"
// @Router       /sessions [post]
func (h *Handler) startSession(w http.ResponseWriter, r *http.Request) {
	var req StartSessionRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	res, err := h.svc.Start(r.Context(), userID(r), interview.Mode(req.Mode), req.NumQuestions)
	if h.handleServiceError(w, r, err) {
		return
	}

	respondJSON(w, http.StatusCreated, StartSessionResponse{
		SessionID:    res.Session.ID,
		Mode:         string(res.Session.Mode),
		NumQuestions: res.Session.QuestionCount,
		Question:     res.Question,
		Transcript:   res.Transcript,
	})
}

// listSessions lists the caller's sessions.
// @Summary      List sessions
// @Description  Newest first, with answered count and average score.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   SessionListItem
// @Failure      401  {object}  ErrorResponse
// @Router       /sessions [get]
func (h *Handler) listSessions(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.ListSessions(r.Context(), userID(r))
	if h.handleServiceError(w, r, err) {
		return
	}

	items := make([]SessionListItem, len(summaries))
	for i, s := range summaries {
		items[i] = SessionListItem{
			ID:           s.Session.ID,
			Mode:         string(s.Session.Mode),
			Status:       string(s.Session.Status),
			NumQuestions: s.Session.QuestionCount,
			Answered:     s.AnsweredCount,
			AverageScore: s.AverageScore,
			CreatedAt:    s.Session.CreatedAt,
			CompletedAt:  s.Session.CompletedAt,
		}
	}
	respondJSON(w, http.StatusOK, items)
}

// getSession returns a session with all of its turns.
// @Summary      Get a session
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SessionResponse
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /sessions/{sessionID} [get]
func (h *Handler) getSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	view, err := h.svc.GetSession(r.Context(), userID(r), sessionID)
	if h.handleServiceError(w, r, err) {
		return
	}

	turns := make([]TurnResponse, len(view.Turns))
	for i, t := range view.Turns {
		turns[i] = TurnResponse{Index: t.Index, Question: t.Question, Answer: t.Answer}
		if t.Evaluation != nil {
			score, feedback := t.Evaluation.Score, t.Evaluation.Feedback
			turns[i].Score = &score
			turns[i].Feedback = &feedback
		}
	}

	respondJSON(w, http.StatusOK, SessionResponse{
		ID:           view.Session.ID,
		Mode:         string(view.Session.Mode),
		Status:       string(view.Session.Status),
		NumQuestions: view.Session.QuestionCount,
		CreatedAt:    view.Session.CreatedAt,
		CompletedAt:  view.Session.CompletedAt,
		Turns:        turns,
		Transcript:   view.Transcript,
	})
}

// submitAnswer answers the open turn, as JSON text or a recorded clip.
// @Summary      Answer the current question
// @Description  Send {"answer": "..."} as JSON, or multipart/form-data with an "audio" file.
// @Description  The answer is stored before grading; if the next question cannot be generated, call resume.
// @Tags         Sessions
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string               true   "Session ID"
// @Param        body       body      SubmitAnswerRequest  false  "Text answer"
// @Param        audio      formData  file                 false  "Recorded answer"
// @Success      200        {object}  RoundResponse
// @Failure      400        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse  "session done, no open turn or duplicate submission"
// @Failure      502        {object}  ErrorResponse  "transcription or question generation failed"
// @Router       /sessions/{sessionID}/answers [post]
func (h *Handler) submitAnswer(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	var (
		res *service.RoundResult
		err error
	)
	if isMultipart(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxAudioBody)
		if err := r.ParseMultipartForm(maxAudioBody); err != nil {
			respondError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}
		file, header, ferr := r.FormFile("audio")
		if ferr != nil {
			respondError(w, http.StatusBadRequest, "audio file is required")
			return
		}
		defer file.Close()

		res, err = h.svc.SubmitAudioAnswer(r.Context(), userID(r), sessionID, speech.Audio{
			Filename:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        file,
		})
	} else {
		var req SubmitAnswerRequest
		if !decodeAndValidate(w, r, &req) {
			return
		}
		res, err = h.svc.SubmitAnswer(r.Context(), userID(r), sessionID, req.Answer)
	}
	if h.handleServiceError(w, r, err) {
		return
	}

	respondJSON(w, http.StatusOK, toRoundResponse(res))
}

// resumeSession finishes a round interrupted after the answer was stored.
// @Summary      Resume a session
// @Description  Grades a stored but ungraded answer and generates the next question. An open turn is returned unchanged.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  RoundResponse
// @Failure      404        {object}  ErrorResponse
// @Failure      409        {object}  ErrorResponse  "session done"
// @Failure      502        {object}  ErrorResponse
// @Router       /sessions/{sessionID}/resume [post]
func (h *Handler) resumeSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	res, err := h.svc.Resume(r.Context(), userID(r), sessionID)
	if h.handleServiceError(w, r, err) {
		return
	}
	respondJSON(w, http.StatusOK, toRoundResponse(res))
}

// getSummary returns the evidence and, for a finished session, the coaching report.
// @Summary      Get the session summary
// @Description  coaching_report is empty while the session is in progress. A coaching failure sets coaching_error.
// @Tags         Sessions
// @Produce      json
// @Security     BearerAuth
// @Param        sessionID  path      string  true  "Session ID"
// @Success      200        {object}  SummaryResponse
// @Failure      403        {object}  ErrorResponse
// @Failure      404        {object}  ErrorResponse
// @Router       /sessions/{sessionID}/summary [get]
func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	summary, err := h.svc.GetSummary(r.Context(), userID(r), sessionID)
	if h.handleServiceError(w, r, err) {
		return
	}

	evaluations := make([]EvaluationResponse, len(summary.Evaluations))
	for i, e := range summary.Evaluations {
		evaluations[i] = EvaluationResponse{TurnIndex: e.TurnIndex, Score: e.Score, Feedback: e.Feedback}
	}

	respondJSON(w, http.StatusOK, SummaryResponse{
		SessionID:      summary.Session.ID,
		Status:         string(summary.Session.Status),
		Questions:      summary.Questions,
		Answers:        summary.Answers,
		Evaluations:    evaluations,
		CoachingReport: summary.CoachingReport,
		CoachingError:  summary.CoachingError,
	})
}

func toRoundResponse(res *service.RoundResult) RoundResponse {
	resp := RoundResponse{
		SessionID:    res.SessionID,
		TurnIndex:    res.TurnIndex,
		Done:         res.Done,
		NextQuestion: res.NextQuestion,
		Transcript:   res.Transcript,
	}
	if v := res.Verdict; v != nil {
		score, feedback := v.Score, v.Feedback
		resp.Score = &score
		resp.Feedback = &feedback
		resp.Degraded = v.Degraded
	}
	return resp
}

// sessionIDParam rejects malformed ids before the store is touched.
func sessionIDParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	sessionID := r.PathValue("sessionID")
	if !id.Valid(sessionID) {
		respondError(w, http.StatusNotFound, "session not found")
		return "", false
	}
	return sessionID, true
}

func isMultipart(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mediaType == "multipart/form-data"
}

// userID is set by RequireAuth on every session route.
func userID(r *http.Request) string {
	uid, _ := auth.UserIDFrom(r.Context())
	return uid
}
