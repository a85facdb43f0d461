package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"newsVoice/api/dto"
	"newsVoice/api/middleware"
	"newsVoice/api/models"
	"newsVoice/api/validation"
	"newsVoice/internal/apperr"
)

// TaskAPI is the coordinator surface the HTTP layer maps onto.
type TaskAPI interface {
	CreateTask(ctx context.Context, traceID string, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	GetTask(ctx context.Context, taskID string) (*dto.TaskResponse, error)
	ListTasks(ctx context.Context, skip, limit int) (*dto.TaskListResponse, error)
	ListArticles(ctx context.Context, taskID string) (*dto.ArticleListResponse, error)
	GetArticle(ctx context.Context, articleID string) (*dto.ArticleResponse, error)
	GetArticleModel(ctx context.Context, articleID string) (*models.Article, error)
	GenerateAudio(ctx context.Context, traceID, articleID string, variant models.AudioVariant) (*dto.GenerateAudioResponse, error)
	DeleteAllTasks(ctx context.Context) (*dto.DeleteAllResponse, error)
}

type TaskHandler struct {
	service TaskAPI
	logger  *zap.Logger
}

func NewTaskHandler(service TaskAPI, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleError(w, "Invalid request body", err, traceID)
		return
	}

	resp, err := h.service.CreateTask(r.Context(), traceID, &req)
	if err != nil {
		h.handleError(w, "Failed to create task", err, traceID)
		return
	}

	h.logger.Info("Task created",
		zap.String("trace_id", traceID),
		zap.String("task_id", resp.ID),
		zap.String("url", resp.URL),
	)

	h.respondJSON(w, http.StatusCreated, resp)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	resp, err := h.service.GetTask(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, "Failed to get task", err, traceID)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resp, err := h.service.ListTasks(r.Context(), skip, limit)
	if err != nil {
		h.handleError(w, "Failed to list tasks", err, traceID)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) Articles(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	resp, err := h.service.ListArticles(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, "Failed to list articles", err, traceID)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) Article(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	resp, err := h.service.GetArticle(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, "Failed to get article", err, traceID)
		return
	}

	h.respondJSON(w, http.StatusOK, resp)
}

func (h *TaskHandler) GenerateAudio(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	var req dto.GenerateAudioRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.handleError(w, "Invalid request body", err, traceID)
			return
		}
	}

	variant, err := validation.ParseVariant(req.Variant)
	if err != nil {
		h.handleError(w, "Invalid variant", apperr.New(apperr.CodeInvalidInput, err.Error(), err), traceID)
		return
	}

	resp, err := h.service.GenerateAudio(r.Context(), traceID, r.PathValue("id"), variant)
	if err != nil {
		h.handleError(w, "Failed to start audio generation", err, traceID)
		return
	}

	h.logger.Info("Audio generation accepted",
		zap.String("trace_id", traceID),
		zap.String("article_id", r.PathValue("id")),
		zap.String("variant", string(variant)),
	)

	h.respondJSON(w, http.StatusAccepted, resp)
}

func (h *TaskHandler) Download(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	article, err := h.service.GetArticleModel(r.Context(), r.PathValue("id"))
	if err != nil {
		h.handleError(w, "Failed to get article", err, traceID)
		return
	}

	switch r.PathValue("kind") {
	case "original":
		h.serveText(w, article.Title, article.Content, safeFilename(article.Title)+"_original.txt")
	case "translated":
		if article.ContentCN == "" {
			h.handleError(w, "Translated content not available",
				apperr.New(apperr.CodeNotFound, "translated content not available", nil), traceID)
			return
		}
		title := article.TitleCN
		if title == "" {
			title = article.Title
		}
		h.serveText(w, title, article.ContentCN, safeFilename(title)+"_translated.txt")
	case "audio":
		h.serveAudio(w, r, article.AudioPath, safeFilename(article.TitleCN)+".mp3", traceID)
	case "audio-original":
		h.serveAudio(w, r, article.AudioPathOriginal, safeFilename(article.Title)+"_original.mp3", traceID)
	default:
		h.handleError(w, "Unknown artifact kind",
			apperr.New(apperr.CodeInvalidInput, "unknown artifact kind", nil), traceID)
	}
}

func (h *TaskHandler) serveText(w http.ResponseWriter, title, body, filename string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	fmt.Fprintf(w, "%s\n\n%s", title, body)
}

func (h *TaskHandler) serveAudio(w http.ResponseWriter, r *http.Request, path, filename, traceID string) {
	if path == "" {
		h.handleError(w, "Audio file not found",
			apperr.New(apperr.CodeNotFound, "audio file not found", nil), traceID)
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	http.ServeFile(w, r, path)
}

func (h *TaskHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	traceID := middleware.GetTraceID(r.Context())

	resp, err := h.service.DeleteAllTasks(r.Context())
	if err != nil {
		h.handleError(w, "Failed to delete tasks", err, traceID)
		return
	}

	h.logger.Info("All tasks deleted",
		zap.String("trace_id", traceID),
		zap.Int("tasks", resp.DeletedTasks),
		zap.Int("articles", resp.DeletedArticles),
	)

	h.respondJSON(w, http.StatusOK, resp)
}

// safeFilename strips anything a download header should not carry.
func safeFilename(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	if len(cleaned) > 50 {
		cleaned = cleaned[:50]
	}
	if cleaned == "" {
		cleaned = "article"
	}
	return cleaned
}

func (h *TaskHandler) handleError(w http.ResponseWriter, message string, err error, traceID string) {
	status := http.StatusInternalServerError
	code := ""

	var appErr *apperr.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &appErr):
		status = appErr.MapToHTTPCode()
		code = appErr.Code
		message = appErr.Message
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		status = http.StatusBadRequest
	}

	h.logger.Error(message,
		zap.String("trace_id", traceID),
		zap.Error(err),
	)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Code:    code,
		TraceID: traceID,
	})
}

func (h *TaskHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
