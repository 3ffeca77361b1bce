package api

import (
	"log/slog"
	"net/http"

	reqdto "rayproxy/internal/handler/dto/request"
	"rayproxy/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

type PaymentHandler struct {
	settlementCommands commands.SettlementCommands
}

func NewPaymentHandler(settlementCommands commands.SettlementCommands) *PaymentHandler {
	return &PaymentHandler{settlementCommands: settlementCommands}
}

// MpesaCallback receives the asynchronous STK push outcome. The provider is
// always acked with ResultCode 0: a non-zero ack only triggers provider-side
// retries and the settlement itself is idempotent, so replays are harmless.
func (h *PaymentHandler) MpesaCallback(c *gin.Context) {
	ack := gin.H{"ResultCode": 0, "ResultDesc": "Accepted"}

	var req reqdto.MpesaCallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("malformed mpesa callback", "error", err.Error())
		c.JSON(http.StatusOK, ack)
		return
	}

	cb := req.Body.StkCallback
	if cb.CheckoutRequestID == "" {
		c.JSON(http.StatusOK, ack)
		return
	}

	success := cb.ResultCode == 0
	err := h.settlementCommands.Settle(c.Request.Context(), cb.CheckoutRequestID, success, cb.ReceiptNumber())
	if err != nil {
		// Logged only; the provider gets its ack regardless.
		slog.Warn("settlement did not apply",
			"checkout_request_id", cb.CheckoutRequestID,
			"result_code", cb.ResultCode,
			"error", err.Error())
	}

	c.JSON(http.StatusOK, ack)
}
