package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/deliverydesk/internal/clock"
	domainErrors "github.com/polkiloo/deliverydesk/internal/domain/errors"
	"github.com/polkiloo/deliverydesk/internal/domain/model"
	"github.com/polkiloo/deliverydesk/internal/projection"
	"github.com/polkiloo/deliverydesk/internal/server/http/dto"
	"github.com/polkiloo/deliverydesk/internal/session"
)

// NoticeHeader carries a user-facing notice on responses without a body.
const NoticeHeader = "X-Notice"

const emptyExportNotice = "No deliveries to export"

// ConsoleHandler serves the partner's queue, history and direct status updates.
type ConsoleHandler struct {
	sessions Sessions
	command  StatusUpdater
	clock    clock.Clock
	exports  ExportObserver
	logger   *slog.Logger
}

// NewConsoleHandler constructs ConsoleHandler.
func NewConsoleHandler(sessions Sessions, command StatusUpdater, clk clock.Clock, exports ExportObserver, logger *slog.Logger) *ConsoleHandler {
	return &ConsoleHandler{sessions: sessions, command: command, clock: clk, exports: exports, logger: logger}
}

// Queue handles GET /api/partner/deliveries.
func (h *ConsoleHandler) Queue(c *gin.Context) {
	priority, ok := projection.ParsePriority(c.Query("priority"))
	if !ok {
		badRequest(c, "unknown priority")
		return
	}
	sess := h.sessions.Get(CurrentPartnerID(c))
	if err := ensureLoaded(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.queueResponse(sess, projection.QueueFilter{Query: c.Query("q"), Priority: priority}))
}

// Refresh handles POST /api/partner/deliveries/refresh.
func (h *ConsoleHandler) Refresh(c *gin.Context) {
	sess := h.sessions.Get(CurrentPartnerID(c))
	if err := sess.Refresh(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.queueResponse(sess, projection.QueueFilter{}))
}

// UpdateStatus handles PATCH /api/partner/deliveries/:orderID/status.
func (h *ConsoleHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusChangeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed status change")
		return
	}

	sess := h.sessions.Get(CurrentPartnerID(c))
	result, err := h.command.UpdateStatus(c.Request.Context(), sess, c.Param("orderID"), req.Status, model.UpdateFields{
		Notes:             req.Notes,
		OTP:               req.OTP,
		Photo:             req.Photo,
		EstimatedDelivery: req.EstimatedDelivery,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusChangeResponse{
		Delivery:   dto.FromDelivery(result.Record),
		Advisories: advisoryStrings(result.Advisories),
		Refreshed:  result.Refreshed,
	})
}

// History handles GET /api/partner/history.
func (h *ConsoleHandler) History(c *gin.Context) {
	filter, ok := historyFilter(c)
	if !ok {
		return
	}
	sess := h.sessions.Get(CurrentPartnerID(c))
	if err := ensureLoaded(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}

	entries := sess.History().List(filter, h.clock.Now())
	resp := dto.HistoryResponse{Items: make([]dto.HistoryEntry, 0, len(entries))}
	for _, e := range entries {
		resp.Items = append(resp.Items, dto.HistoryEntry{Delivery: dto.FromDelivery(e.Record), Label: string(e.Label)})
	}
	c.JSON(http.StatusOK, resp)
}

// Export handles GET /api/partner/history/export.
func (h *ConsoleHandler) Export(c *gin.Context) {
	filter, ok := historyFilter(c)
	if !ok {
		return
	}
	sess := h.sessions.Get(CurrentPartnerID(c))
	if err := ensureLoaded(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}

	now := h.clock.Now()
	entries := sess.History().List(filter, now)

	var buf bytes.Buffer
	err := projection.ExportCSV(&buf, entries)
	switch {
	case errors.Is(err, domainErrors.ErrEmptyExport):
		h.exports.ObserveExport(0)
		c.Header(NoticeHeader, emptyExportNotice)
		c.Status(http.StatusNoContent)
		return
	case err != nil:
		writeError(c, err)
		return
	}

	h.exports.ObserveExport(len(entries))
	h.logger.Info("history exported",
		slog.String("partner", sess.PartnerID()),
		slog.Int("rows", len(entries)),
	)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", projection.ExportFilename(now)))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func (h *ConsoleHandler) queueResponse(sess *session.Session, filter projection.QueueFilter) dto.QueueResponse {
	items := sess.Queue().List(filter, h.clock.Now())
	resp := dto.QueueResponse{Items: make([]dto.QueueItem, 0, len(items))}
	for _, it := range items {
		resp.Items = append(resp.Items, dto.QueueItem{Delivery: dto.FromDelivery(it.Record), Priority: string(it.Priority)})
	}
	if at := sess.Queue().RefreshedAt(); !at.IsZero() {
		resp.RefreshedAt = &at
	}
	return resp
}

func historyFilter(c *gin.Context) (projection.HistoryFilter, bool) {
	window, ok := projection.ParseDateWindow(c.Query("window"))
	if !ok {
		badRequest(c, "unknown date window")
		return projection.HistoryFilter{}, false
	}
	label, ok := projection.ParseLabel(c.Query("status"))
	if !ok {
		badRequest(c, "unknown status filter")
		return projection.HistoryFilter{}, false
	}
	return projection.HistoryFilter{Window: window, Label: label}, true
}
