package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// setFriendlyName godoc
// @Summary Set or clear a phone number's friendly name
// @Description A nil friendly_name clears the label instead of setting one
// @Tags FriendlyNames
// @Accept json
// @Produce json
// @Param body body setFriendlyNameRequest true "phone number and label"
// @Success 200
// @Failure 400 {object} errorResponse
// @Router /friendly-names [post]
func (h *Handler) setFriendlyName(c *gin.Context) {
	var req setFriendlyNameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.SetFriendlyName(c.Request.Context(), req.PhoneNumber, req.FriendlyName); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// getFriendlyName godoc
// @Summary Read a phone number's friendly name
// @Tags FriendlyNames
// @Produce json
// @Param phone_number path string true "phone number"
// @Success 200 {object} friendlyNameResponse
// @Failure 404 {object} errorResponse
// @Router /friendly-names/{phone_number} [get]
func (h *Handler) getFriendlyName(c *gin.Context) {
	phoneNumber := c.Param("phone_number")
	name, err := h.store.GetFriendlyName(c.Request.Context(), phoneNumber)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, friendlyNameResponse{PhoneNumber: phoneNumber, FriendlyName: name})
}
