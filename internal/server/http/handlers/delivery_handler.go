package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/deliverydesk/internal/server/http/dto"
)

// DeliveryHandler serves the delivery service API consumed by console instances.
type DeliveryHandler struct {
	backend DeliveryBackend
	logger  *slog.Logger
}

// NewDeliveryHandler constructs DeliveryHandler.
func NewDeliveryHandler(backend DeliveryBackend, logger *slog.Logger) *DeliveryHandler {
	return &DeliveryHandler{backend: backend, logger: logger}
}

// Assign handles POST /api/deliveries. Replays of a known order answer 200 with the stored record.
func (h *DeliveryHandler) Assign(c *gin.Context) {
	var req dto.Delivery
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed delivery")
		return
	}
	record, ok := req.ToModel()
	if !ok {
		c.JSON(http.StatusUnprocessableEntity, dto.ErrorResponse{Code: dto.CodeUnknownStatus, Error: "unknown status", Status: req.Status})
		return
	}

	stored, created, err := h.backend.Assign(c.Request.Context(), record)
	if err != nil {
		writeError(c, err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
		h.logger.Info("delivery assigned",
			slog.String("order", stored.OrderID),
			slog.String("partner", stored.PartnerID),
		)
	}
	c.JSON(status, dto.FromDelivery(*stored))
}

// Assigned handles GET /api/partners/:partnerID/deliveries/assigned.
func (h *DeliveryHandler) Assigned(c *gin.Context) {
	records, err := h.backend.Assigned(c.Request.Context(), CurrentPartnerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDeliveries(records))
}

// History handles GET /api/partners/:partnerID/deliveries/history.
func (h *DeliveryHandler) History(c *gin.Context) {
	records, err := h.backend.History(c.Request.Context(), CurrentPartnerID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDeliveries(records))
}

// UpdateStatus handles PATCH /api/deliveries/:orderID/status.
func (h *DeliveryHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed status update")
		return
	}
	record, err := h.backend.UpdateStatus(c.Request.Context(), CurrentPartnerID(c), c.Param("orderID"), req.ToModel())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromDelivery(*record))
}

// IssueOTP handles POST /api/deliveries/:orderID/otp.
func (h *DeliveryHandler) IssueOTP(c *gin.Context) {
	orderID := c.Param("orderID")
	code, err := h.backend.IssueOTP(c.Request.Context(), CurrentPartnerID(c), orderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.OTPResponse{OrderID: orderID, OTP: code})
}
