package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// dbMessages godoc
// @Summary Paginated message history for a phone number
// @Tags DB
// @Accept json
// @Produce json
// @Param body body dbMessagesRequest true "phone number and pagination"
// @Success 200 {array} messageDTO
// @Failure 400 {object} errorResponse
// @Router /db/sms [post]
func (h *Handler) dbMessages(c *gin.Context) {
	var req dbMessagesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.store.PaginateByNumber(req.PhoneNumber, req.toStore())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]messageDTO, len(rows))
	for i, r := range rows {
		out[i] = messageDTO{
			MessageID:        r.MessageID,
			PhoneNumber:      r.PhoneNumber,
			Content:          r.Content,
			MessageReference: r.MessageReference,
			IsOutgoing:       r.IsOutgoing,
			Status:           r.Status,
			CreatedAt:        r.CreatedAt,
			CompletedAt:      r.CompletedAt,
			DecryptFailed:    r.DecryptFailed,
		}
	}
	c.JSON(http.StatusOK, out)
}

// dbDeliveryReports godoc
// @Summary Paginated delivery reports for a message
// @Tags DB
// @Accept json
// @Produce json
// @Param body body dbDeliveryReportsRequest true "message id and pagination"
// @Success 200 {array} deliveryReportDTO
// @Failure 400 {object} errorResponse
// @Router /db/delivery-reports [post]
func (h *Handler) dbDeliveryReports(c *gin.Context) {
	var req dbDeliveryReportsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.store.ReportsFor(req.MessageID, req.toStore())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]deliveryReportDTO, len(rows))
	for i, r := range rows {
		out[i] = deliveryReportDTO{
			ReportID:  r.ReportID,
			MessageID: r.MessageID,
			Status:    r.Status,
			IsFinal:   r.IsFinal,
			CreatedAt: r.CreatedAt,
		}
	}
	c.JSON(http.StatusOK, out)
}

// dbLatestNumbers godoc
// @Summary Distinct phone numbers this gateway has exchanged messages with
// @Tags DB
// @Accept json
// @Produce json
// @Param body body dbLatestNumbersRequest false "pagination"
// @Success 200 {array} numberSummaryDTO
// @Failure 400 {object} errorResponse
// @Router /db/latest-numbers [post]
func (h *Handler) dbLatestNumbers(c *gin.Context) {
	var req dbLatestNumbersRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			sendError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	rows, err := h.store.LatestNumbers(c.Request.Context(), req.toStore())
	if err != nil {
		abortWithError(c, err)
		return
	}

	out := make([]numberSummaryDTO, len(rows))
	for i, r := range rows {
		out[i] = numberSummaryDTO{PhoneNumber: r.PhoneNumber, FriendlyName: r.FriendlyName}
	}
	c.JSON(http.StatusOK, out)
}
