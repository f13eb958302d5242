package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"suspicious-account-graph/internal/domain/entity"
	"suspicious-account-graph/internal/domain/service"
	"suspicious-account-graph/internal/infrastructure/logger"
	"suspicious-account-graph/internal/infrastructure/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	IsConnected(ctx context.Context) bool
}

// Handler exposes the graph over HTTP
type Handler struct {
	ingest   service.IngestService
	query    service.QueryService
	topology service.TopologyService
	evidence *storage.EvidenceStore
	store    Pinger
	logger   *logger.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	ingest service.IngestService,
	query service.QueryService,
	topology service.TopologyService,
	evidence *storage.EvidenceStore,
	store Pinger,
	logger *logger.Logger,
) *Handler {
	return &Handler{
		ingest:   ingest,
		query:    query,
		topology: topology,
		evidence: evidence,
		store:    store,
		logger:   logger.WithComponent("http-handler"),
	}
}

// Health reports liveness via a driver connectivity check, not graph
// queries; health pollers hit this endpoint every few seconds. The store
// being down degrades the report but still answers 200 so orchestrators
// don't restart-loop on a Neo4J outage.
func (h *Handler) Health(c *gin.Context) {
	status := "ok"
	if h.store == nil || !h.store.IsConnected(c.Request.Context()) {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{"status": status})
}

// QueryGraph handles GET /graph/entities
func (h *Handler) QueryGraph(c *gin.Context) {
	filter, err := filterFromQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	view, err := h.query.QueryGraph(c.Request.Context(), filter)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// AccountDetail handles GET /graph/entities/:id
func (h *Handler) AccountDetail(c *gin.Context) {
	detail, err := h.query.GetAccountDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// KindStats handles GET /graph/stats
func (h *Handler) KindStats(c *gin.Context) {
	stats, err := h.query.GetKindStats(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"kinds": stats})
}

// UpsertSite handles POST /sites/upsert
func (h *Handler) UpsertSite(c *gin.Context) {
	var result entity.ExtractionResult
	if err := c.ShouldBindJSON(&result); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.ingest.UpsertSiteData(c.Request.Context(), &result)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

// RecordTransfer handles POST /graph/transfers
func (h *Handler) RecordTransfer(c *gin.Context) {
	var in entity.TransferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	transfer, err := h.ingest.RecordTransfer(c.Request.Context(), &in)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, transfer)
}

// GenerateTopology handles POST /dev/synthetic
func (h *Handler) GenerateTopology(c *gin.Context) {
	var cfg service.TopologyConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	summary, err := h.topology.Generate(c.Request.Context(), cfg)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, summary)
}

// ClearTopology handles DELETE /dev/synthetic
func (h *Handler) ClearTopology(c *gin.Context) {
	removed, err := h.topology.Clear(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"nodes_removed": removed})
}

// EvidenceURL handles GET /evidence/*key
func (h *Handler) EvidenceURL(c *gin.Context) {
	if h.evidence == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "evidence storage is not configured"})
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing evidence key"})
		return
	}

	url, err := h.evidence.PresignGet(c.Request.Context(), key)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// fail maps domain errors to HTTP status codes
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrMalformedFilter):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrEntityNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrNoValidData):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, entity.ErrStoreUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		h.logger.Error("Request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// filterFromQuery builds a filter from query parameters. Absent parameters
// keep the match-everything defaults.
func filterFromQuery(c *gin.Context) (*entity.Filter, error) {
	filter := entity.NewFilter()

	if raw := c.Query("entity_types"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				filter.Kinds = append(filter.Kinds, entity.Kind(part))
			}
		}
	}
	filter.Banks = splitParam(c.Query("banks"))
	filter.WalletProviders = splitParam(c.Query("wallet_providers"))
	filter.Currencies = splitParam(c.Query("currencies"))
	filter.PhoneProviders = splitParam(c.Query("phone_providers"))
	filter.Search = c.Query("search")

	if raw := c.Query("priority_min"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("priority_min must be an integer")
		}
		filter.PriorityMin = v
	}
	if raw := c.Query("priority_max"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.New("priority_max must be an integer")
		}
		filter.PriorityMax = v
	}

	return filter, nil
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
