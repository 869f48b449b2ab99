package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"codegen_server/internal/ai"
	"codegen_server/internal/archive"
	"codegen_server/internal/fallback"
	"codegen_server/internal/types"

	"fortio.org/log"
	"github.com/gin-gonic/gin"
)

// APIHandler holds dependencies for API endpoints.
type APIHandler struct {
	aiGenerator *ai.Generator
	now         func() time.Time
}

// NewAPIHandler initializes a new API handler with its dependencies.
func NewAPIHandler(aiGen *ai.Generator) *APIHandler {
	return &APIHandler{aiGenerator: aiGen, now: time.Now}
}

// --- Structs for API Requests ---

type GenerateRequest struct {
	ProjectName     string   `json:"projectName"`
	Description     string   `json:"description" binding:"required,min=10"`
	Framework       string   `json:"framework"`
	ContentLanguage string   `json:"contentLanguage"`
	Features        []string `json:"features"`
	Database        string   `json:"database"`
	Authentication  bool     `json:"authentication"`
	Deployment      string   `json:"deployment"`
	WithTests       bool     `json:"withTests"`
}

func (r GenerateRequest) project() ai.ProjectRequest {
	return ai.ProjectRequest{
		ProjectName:     r.ProjectName,
		Description:     r.Description,
		Framework:       r.Framework,
		ContentLanguage: r.ContentLanguage,
		Features:        r.Features,
		Database:        r.Database,
		Authentication:  r.Authentication,
		Deployment:      r.Deployment,
		WithTests:       r.WithTests,
	}
}

type EnhanceRequest struct {
	ProjectName       string `json:"projectName"`
	Description       string `json:"description"`
	Code              string `json:"code" binding:"required"`
	LanguageFramework string `json:"languageFramework" binding:"required"`
}

type SuggestFeaturesRequest struct {
	Description string `json:"description" binding:"required,min=10"`
}

type DownloadRequest struct {
	ProjectName string                `json:"projectName"`
	Files       []types.GeneratedFile `json:"files" binding:"required,min=1,dive"`
}

// statusFor maps an error kind to the HTTP status and the reason shown to
// the client. Upstream details stay in the server log.
func statusFor(err error) (int, string) {
	switch types.KindOf(err) {
	case types.KindInvalidRequest:
		return http.StatusBadRequest, err.Error()
	case types.KindCanceled:
		return http.StatusRequestTimeout, "Request was cancelled before generation finished"
	case types.KindEmptyOutput:
		return http.StatusBadGateway, "The model returned an empty response"
	default:
		return http.StatusBadGateway, "The model request failed"
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, types.Fail[any]("Invalid request body: "+err.Error()))
}

// --- API Handlers ---

// POST /project/generate
func (h *APIHandler) GenerateProject(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	log.Infof("Received generation request for project %q", req.ProjectName)
	res, err := h.aiGenerator.GenerateProject(c.Request.Context(), req.project(), nil)
	if err != nil {
		log.Errf("Error generating project %q: %v", req.ProjectName, err)
		status, reason := statusFor(err)
		c.JSON(status, types.Fail[*ai.GenerationResult](reason))
		return
	}

	log.Infof("Generation %s successful: %d files", res.ID, len(res.Files))
	c.JSON(http.StatusCreated, types.Ok(res))
}

// POST /project/generate/stream
//
// Server-sent events: one "fragment" event per model fragment, then either a
// "result" event carrying the envelope or an "error" event.
func (h *APIHandler) GenerateProjectStream(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	log.Infof("Received streaming generation request for project %q", req.ProjectName)
	res, err := h.aiGenerator.GenerateProject(c.Request.Context(), req.project(), func(fragment string) {
		c.SSEvent("fragment", fragment)
		c.Writer.Flush()
	})
	if err != nil {
		log.Errf("Error streaming project %q: %v", req.ProjectName, err)
		_, reason := statusFor(err)
		c.SSEvent("error", types.Fail[*ai.GenerationResult](reason))
		c.Writer.Flush()
		return
	}

	c.SSEvent("result", types.Ok(res))
	c.Writer.Flush()
}

// POST /project/enhance
func (h *APIHandler) EnhanceProject(c *gin.Context) {
	var req EnhanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	res, err := h.aiGenerator.EnhanceWithTests(c.Request.Context(), ai.EnhanceRequest{
		ProjectName:       req.ProjectName,
		Description:       req.Description,
		Code:              req.Code,
		LanguageFramework: req.LanguageFramework,
	})
	if err != nil {
		log.Errf("Error enhancing project %q: %v", req.ProjectName, err)
		status, reason := statusFor(err)
		c.JSON(status, types.Fail[*ai.GenerationResult](reason))
		return
	}
	c.JSON(http.StatusOK, types.Ok(res))
}

// POST /features/suggest
func (h *APIHandler) SuggestFeatures(c *gin.Context) {
	var req SuggestFeaturesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	features, err := h.aiGenerator.SuggestFeatures(c.Request.Context(), req.Description)
	if err != nil {
		log.Errf("Error suggesting features: %v", err)
		status, reason := statusFor(err)
		c.JSON(status, types.Fail[[]string](reason))
		return
	}
	c.JSON(http.StatusOK, types.Ok(features))
}

// POST /project/download
func (h *APIHandler) DownloadProject(c *gin.Context) {
	var req DownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	var buf bytes.Buffer
	zw := archive.NewZipArchiver(&buf, h.now())
	n, err := archive.Write(c.Request.Context(), zw, req.Files)
	if err == nil {
		err = zw.Close()
	}
	if err != nil {
		if errors.Is(err, archive.ErrUnsafePath) {
			c.JSON(http.StatusBadRequest, types.Fail[any](err.Error()))
			return
		}
		log.Errf("Error building archive for %q: %v", req.ProjectName, err)
		c.JSON(http.StatusInternalServerError, types.Fail[any]("Failed to build archive"))
		return
	}

	filename := fallback.Slug(req.ProjectName) + zw.Extension()
	log.LogVf("Serving %s with %d files (%d bytes)", filename, n, buf.Len())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/zip", buf.Bytes())
}

// GET /catalog
func (h *APIHandler) GetCatalog(c *gin.Context) {
	c.JSON(http.StatusOK, types.Ok(h.aiGenerator.Catalog()))
}

// GET /health
func (h *APIHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "model": h.aiGenerator.ModelName()})
}
