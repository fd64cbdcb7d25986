package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"k8s.io/klog/v2"

	"libgenui_server/internal/ai"
	"libgenui_server/internal/pipeline"
	"libgenui_server/internal/store"
	"libgenui_server/internal/types"
	"libgenui_server/internal/utils"
)

const maxImageBytes = 10 << 20

// ArtifactReader reads stored artifacts.
type ArtifactReader interface {
	List(ctx context.Context) ([]types.Artifact, error)
	Get(ctx context.Context, id string) (types.Artifact, error)
}

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	orchestrator *pipeline.Orchestrator
	artifacts    ArtifactReader
}

func NewAPIHandler(orchestrator *pipeline.Orchestrator, artifacts ArtifactReader) *APIHandler {
	return &APIHandler{orchestrator: orchestrator, artifacts: artifacts}
}

// --- Structs for API Requests/Responses ---

type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

type AsyncResponse struct {
	RunID string `json:"runId"`
}

// FileView is a generated file with its display metadata.
type FileView struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
	Language string `json:"language"`
	Icon     string `json:"icon"`
}

type ArtifactResponse struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	Files            []FileView `json:"files"`
	RenderedFragment string     `json:"renderedFragment,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type StateResponse struct {
	RunID        string     `json:"runId,omitempty"`
	IsLoading    bool       `json:"isLoading"`
	Error        string     `json:"error,omitempty"`
	CurrentFiles []FileView `json:"currentFiles"`
	Description  string     `json:"description"`
}

func fileViews(files types.FileSet) []FileView {
	out := make([]FileView, 0, len(files))
	for _, f := range files {
		out = append(out, FileView{
			Filename: f.Filename,
			Content:  f.Content,
			Language: utils.DetermineFileType(f.Filename),
			Icon:     utils.FileIcon(f.Filename),
		})
	}
	return out
}

func newArtifactResponse(a types.Artifact) ArtifactResponse {
	return ArtifactResponse{
		ID:               a.ID,
		Title:            utils.SnippetTitle(a.Description),
		Description:      a.Description,
		Files:            fileViews(a.Files),
		RenderedFragment: a.RenderedFragment,
		CreatedAt:        a.CreatedAt,
	}
}

func newStateResponse(s types.PipelineState) StateResponse {
	return StateResponse{
		RunID:        s.RunID,
		IsLoading:    s.IsLoading,
		Error:        s.Error,
		CurrentFiles: fileViews(s.CurrentFiles),
		Description:  s.Description,
	}
}

// --- API Handlers ---

// POST /project/generate
func (h *APIHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	h.run(c, pipeline.Request{Prompt: req.Prompt})
}

// POST /project/generate/image
func (h *APIHandler) GenerateImage(c *gin.Context) {
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An image file is required in the 'image' field"})
		return
	}
	if header.Size > maxImageBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Image is too large"})
		return
	}
	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read image: " + err.Error()})
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to read image: " + err.Error()})
		return
	}

	// multipart part headers default to application/octet-stream, so let
	// the pipeline sniff the type in that case
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "application/octet-stream" {
		mimeType = ""
	}
	h.run(c, pipeline.Request{Image: data, ImageMIMEType: mimeType})
}

func (h *APIHandler) run(c *gin.Context, req pipeline.Request) {
	if c.Query("async") == "true" {
		runID, err := h.orchestrator.RunAsync(req)
		if err != nil {
			writeError(c, err)
			return
		}
		klog.V(2).Infof("api: accepted async run %s", runID)
		c.JSON(http.StatusAccepted, AsyncResponse{RunID: runID})
		return
	}

	artifact, err := h.orchestrator.Run(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, newArtifactResponse(*artifact))
}

// GET /state
func (h *APIHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, newStateResponse(h.orchestrator.State.Value()))
}

// GET /state/stream replays the current state, then every change, as
// server-sent events until the client goes away.
func (h *APIHandler) StreamState(c *gin.Context) {
	updates, unsubscribe := h.orchestrator.State.Subscribe()
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	ctx := c.Request.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("state", newStateResponse(state))
			c.Writer.Flush()
		}
	}
}

// GET /preview
func (h *APIHandler) GetPreview(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(h.orchestrator.Fragment.Value()))
}

// GET /description
func (h *APIHandler) GetDescription(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"description": h.orchestrator.Description.Value()})
}

// GET /artifacts
func (h *APIHandler) ListArtifacts(c *gin.Context) {
	artifacts, err := h.artifacts.List(c.Request.Context())
	if err != nil {
		klog.Errorf("api: listing artifacts: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list artifacts"})
		return
	}
	out := make([]ArtifactResponse, 0, len(artifacts))
	for _, a := range artifacts {
		out = append(out, newArtifactResponse(a))
	}
	c.JSON(http.StatusOK, out)
}

// GET /artifacts/:id
func (h *APIHandler) GetArtifact(c *gin.Context) {
	a, err := h.artifacts.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Artifact not found"})
		return
	}
	if err != nil {
		klog.Errorf("api: loading artifact %s: %v", c.Param("id"), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load artifact"})
		return
	}
	c.JSON(http.StatusOK, newArtifactResponse(a))
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	var stageErr *pipeline.StageError
	switch {
	case errors.Is(err, pipeline.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &stageErr) && stageErr.Stage == pipeline.StagePersist:
		return http.StatusInternalServerError
	case errors.Is(err, ai.ErrNoFileSet),
		errors.Is(err, ai.ErrInvalidRecord),
		errors.Is(err, types.ErrEmptyFileSet),
		errors.Is(err, types.ErrInvalidFileRecord),
		errors.Is(err, types.ErrDuplicateFilename),
		errors.Is(err, types.ErrMissingRequiredFile):
		return http.StatusUnprocessableEntity
	case utils.ShouldRetry(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		klog.Errorf("api: generation failed (%d): %v", status, err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
