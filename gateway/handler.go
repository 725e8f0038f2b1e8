package gateway

import (
	"context"
	"io"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"

	"github.com/kbukum/asrgate/audio"
	"github.com/kbukum/asrgate/component"
	"github.com/kbukum/asrgate/errors"
	"github.com/kbukum/asrgate/logger"
	"github.com/kbukum/asrgate/server"
	"github.com/kbukum/asrgate/transcription"
)

// Transcriber is the part of Gateway the handler needs.
type Transcriber interface {
	Transcribe(ctx context.Context, blob audio.Blob) (*transcription.Result, error)
	MaxAudioSize() int64
}

// Response is the success body.
type Response struct {
	Text string `json:"text"`
}

// Handler serves transcription requests.
type Handler struct {
	gw  Transcriber
	log *logger.Logger
}

// NewHandler creates a Handler for gw.
func NewHandler(gw Transcriber) *Handler {
	return &Handler{gw: gw, log: logger.Get("gateway")}
}

// Routes lists the endpoints served by Register.
func (h *Handler) Routes() []component.Route {
	return []component.Route{
		{Method: http.MethodPost, Path: "/transcribe", Handler: "gateway.Handler.Transcribe"},
		{Method: http.MethodPost, Path: "/api/asr", Handler: "gateway.Handler.Transcribe"},
	}
}

// Register mounts the endpoints on r.
func (h *Handler) Register(r gin.IRoutes) {
	for _, route := range h.Routes() {
		r.Handle(route.Method, route.Path, h.Transcribe)
	}
}

// Transcribe reads the raw request body as one clip and answers with its text.
func (h *Handler) Transcribe(c *gin.Context) {
	limit := h.gw.MaxAudioSize()
	if c.Request.ContentLength > limit {
		h.fail(c, errors.PayloadTooLarge(c.Request.ContentLength, limit))
		return
	}

	// One byte past the limit is enough to detect an oversized body.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, limit+1))
	if err != nil {
		h.fail(c, errors.InvalidInput("body", "could not read request body").WithCause(err))
		return
	}

	res, err := h.gw.Transcribe(c.Request.Context(), audio.NewBlob(body, c.GetHeader("Content-Type")))
	if err != nil {
		h.fail(c, err)
		return
	}
	server.RespondOK(c, Response{Text: res.Text})
}

func (h *Handler) fail(c *gin.Context, err error) {
	appErr := errors.Wrap(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		h.log.WithContext(c.Request.Context()).Error("transcription request failed", logger.MergeWithError(logger.Fields(
			logger.FieldStatus, appErr.HTTPStatus,
			"code", string(appErr.Code),
			"path", c.Request.URL.Path,
		), err))
		report(c.Request, appErr)
	}
	server.RespondWithError(c, appErr)
}

// report sends a server-side failure to sentry with the request attached.
// Without an initialized client it does nothing.
func report(r *http.Request, appErr *errors.AppError) {
	hub := sentry.GetHubFromContext(r.Context())
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}
	hub.WithScope(func(scope *sentry.Scope) {
		scope.SetRequest(r)
		scope.SetTag("code", string(appErr.Code))
		if id := logger.RequestIDFromContext(r.Context()); id != "" {
			scope.SetTag("request_id", id)
		}
		hub.CaptureException(appErr)
	})
}
