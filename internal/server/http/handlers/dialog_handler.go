package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/deliverydesk/internal/dialog"
	"github.com/polkiloo/deliverydesk/internal/server/http/dto"
)

// DialogHandler exposes the status update dialog lifecycle.
type DialogHandler struct {
	dialogs  *dialog.Coordinator
	sessions Sessions
}

// NewDialogHandler constructs DialogHandler.
func NewDialogHandler(dialogs *dialog.Coordinator, sessions Sessions) *DialogHandler {
	return &DialogHandler{dialogs: dialogs, sessions: sessions}
}

// Open handles POST /api/partner/deliveries/:orderID/dialog.
func (h *DialogHandler) Open(c *gin.Context) {
	sess := h.sessions.Get(CurrentPartnerID(c))
	if err := ensureLoaded(c.Request.Context(), sess); err != nil {
		writeError(c, err)
		return
	}
	view, err := h.dialogs.Open(sess, c.Param("orderID"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDialogResponse(view))
}

// Get handles GET /api/partner/deliveries/:orderID/dialog.
func (h *DialogHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, toDialogResponse(h.dialogs.Get(CurrentPartnerID(c), c.Param("orderID"))))
}

// Edit handles PATCH /api/partner/deliveries/:orderID/dialog.
func (h *DialogHandler) Edit(c *gin.Context) {
	var req dto.DialogPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "malformed dialog patch")
		return
	}

	partnerID, orderID := CurrentPartnerID(c), c.Param("orderID")
	view := h.dialogs.Get(partnerID, orderID)
	var err error
	if req.DismissNotice {
		if view, err = h.dialogs.DismissNotice(partnerID, orderID); err != nil {
			writeError(c, err)
			return
		}
	}
	if hasEdits(req) || !req.DismissNotice {
		if view, err = h.dialogs.Edit(partnerID, orderID, dialog.Patch{
			Status:            req.Status,
			Notes:             req.Notes,
			OTP:               req.OTP,
			Photo:             req.Photo,
			EstimatedDelivery: req.EstimatedDelivery,
			ClearEstimate:     req.ClearEstimate,
		}); err != nil {
			writeError(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, toDialogResponse(view))
}

// Submit handles POST /api/partner/deliveries/:orderID/dialog/submit.
// A rejected submission still returns the dialog so the form can be corrected.
func (h *DialogHandler) Submit(c *gin.Context) {
	sess := h.sessions.Get(CurrentPartnerID(c))
	view, result, err := h.dialogs.Submit(c.Request.Context(), sess, c.Param("orderID"))
	if err != nil {
		if view.State != dialog.StateOpen {
			writeError(c, err)
			return
		}
		status, _ := errorResponse(err)
		c.JSON(status, toDialogResponse(view))
		return
	}

	resp := toDialogResponse(view)
	if result != nil {
		delivery := dto.FromDelivery(result.Record)
		resp.Delivery = &delivery
	}
	c.JSON(http.StatusOK, resp)
}

// Close handles DELETE /api/partner/deliveries/:orderID/dialog.
func (h *DialogHandler) Close(c *gin.Context) {
	h.dialogs.Close(CurrentPartnerID(c), c.Param("orderID"))
	c.Status(http.StatusNoContent)
}

func hasEdits(p dto.DialogPatch) bool {
	return p.Status != nil || p.Notes != nil || p.OTP != nil || p.Photo != nil ||
		p.EstimatedDelivery != nil || p.ClearEstimate
}

func toDialogResponse(v dialog.View) dto.DialogResponse {
	options := make([]string, 0, len(v.Options))
	for _, o := range v.Options {
		options = append(options, string(o))
	}
	return dto.DialogResponse{
		OrderID: v.OrderID,
		State:   string(v.State),
		Form: dto.DialogForm{
			Status:            v.Form.Status,
			Notes:             v.Form.Notes,
			OTP:               v.Form.OTP,
			Photo:             v.Form.Photo,
			EstimatedDelivery: v.Form.EstimatedDelivery,
		},
		Options:    options,
		FieldError: v.FieldError,
		Notice:     v.Notice,
		Advisories: advisoryStrings(v.Advisories),
	}
}
