package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/guestflow/faqbot/internal/domain/retrieval"
	apperrors "github.com/guestflow/faqbot/pkg/errors"
)

// Handler wires the HTTP transport to the retrieval core.
type Handler struct {
	svc    *retrieval.Service
	logger *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(svc *retrieval.Service, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

type faqRequest struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Answer resolves an end-user query against the tenant corpus.
func (h *Handler) Answer(c *gin.Context) {
	var req retrieval.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	result, err := h.svc.Answer(c.Request.Context(), c.Param("tenantId"), req)
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "query_failed"))
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListFaqs returns the tenant's entries in insertion order.
func (h *Handler) ListFaqs(c *gin.Context) {
	entries, err := h.svc.List(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "faq_list_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// AddFaq appends a new FAQ entry.
func (h *Handler) AddFaq(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	entry, err := h.svc.Add(c.Request.Context(), c.Param("tenantId"), req.Question, req.Answer)
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "faq_add_failed"))
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// UpdateFaq rewrites an existing FAQ entry.
func (h *Handler) UpdateFaq(c *gin.Context) {
	var req faqRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	entry, err := h.svc.Update(c.Request.Context(), c.Param("tenantId"), c.Param("entryId"), req.Question, req.Answer)
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "faq_update_failed"))
		return
	}
	c.JSON(http.StatusOK, entry)
}

// DeleteFaq removes an FAQ entry.
func (h *Handler) DeleteFaq(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("tenantId"), c.Param("entryId")); err != nil {
		abortWithError(c, asDomainHTTPError(err, "faq_delete_failed"))
		return
	}
	c.Status(http.StatusNoContent)
}

// ImportFaqs merges a question,answer CSV body into the corpus.
func (h *Handler) ImportFaqs(c *gin.Context) {
	pairs, err := retrieval.ParseCSV(c.Request.Body)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_csv", errMessage(err), err))
		return
	}

	report, err := h.svc.Import(c.Request.Context(), c.Param("tenantId"), pairs)
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "faq_import_failed"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// ExportFaqs streams the corpus as a question,answer CSV.
func (h *Handler) ExportFaqs(c *gin.Context) {
	pairs, err := h.svc.Export(c.Request.Context(), c.Param("tenantId"))
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "faq_export_failed"))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="faq_export.csv"`)
	c.Data(http.StatusOK, "text/csv", retrieval.MarshalCSV(pairs))
}

// RefreshEmbeddings regenerates stale vectors, or every vector with
// ?full=true.
func (h *Handler) RefreshEmbeddings(c *gin.Context) {
	full := strings.EqualFold(c.Query("full"), "true") || c.Query("full") == "1"

	report, err := h.svc.Refresh(c.Request.Context(), c.Param("tenantId"), full)
	if err != nil {
		abortWithError(c, asDomainHTTPError(err, "refresh_failed"))
		return
	}
	c.JSON(http.StatusOK, report)
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func asDomainHTTPError(err error, fallbackCode string) *HTTPError {
	var dimErr *retrieval.DimensionError
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case errors.Is(err, retrieval.ErrDuplicateQuestion):
		return NewHTTPError(http.StatusConflict, "duplicate_question", errMessage(err), err)
	case errors.Is(err, retrieval.ErrEntryNotFound):
		return NewHTTPError(http.StatusNotFound, "entry_not_found", errMessage(err), err)
	case apperrors.IsCode(err, "corpus_unavailable"):
		return NewHTTPError(http.StatusServiceUnavailable, "corpus_unavailable", "corpus storage unavailable", err)
	case errors.As(err, &dimErr):
		return NewHTTPError(http.StatusInternalServerError, "dimension_mismatch", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
