package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/checkout-ecom/internal/checkout"
	"github.com/MikeMC777/checkout-ecom/internal/order"
	"github.com/MikeMC777/checkout-ecom/internal/payment"
)

// intentCreator lets tests swap the processor SDK client.
type intentCreator interface {
	CreateIntent(ctx context.Context, amount decimal.Decimal) (*payment.Intent, error)
}

var allowedStatuses = map[string]bool{
	order.StatusPending:   true,
	order.StatusShipped:   true,
	order.StatusDelivered: true,
	order.StatusCanceled:  true,
}

// createPaymentIntentHandler creates a processor order for the checkout amount.
//
//	@Summary  Create payment intent
//	@Router   /payments/intent [post]
func createPaymentIntentHandler(payments intentCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Amount decimal.Decimal `json:"amount"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Amount.LessThanOrEqual(decimal.Zero) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Amount is required!"})
			return
		}
		intent, err := payments.CreateIntent(c.Request.Context(), req.Amount)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error creating payment order", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": intent})
	}
}

// checkoutHandler verifies the payment claim and runs fulfillment.
//
//	@Summary  Verify payment and fulfill order
//	@Router   /checkout [post]
func checkoutHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Malformed checkout payload.", "error": err.Error()})
			return
		}

		res, err := svc.Fulfill(c.Request.Context(), &req)
		switch {
		case errors.Is(err, checkout.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing required payment fields or cart is empty!"})
			return
		case errors.Is(err, checkout.ErrInvalidPayment):
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid payment signature!"})
			return
		case errors.Is(err, checkout.ErrPersistence):
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Failed to store order.", "error": err.Error()})
			return
		case err != nil:
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Checkout failed.", "error": err.Error()})
			return
		}

		if res.AlreadyRecorded {
			c.JSON(http.StatusOK, gin.H{"success": true, "message": "Order already recorded.", "order": res.Order})
			return
		}
		body := gin.H{
			"success":     true,
			"message":     "Order stored, confirmation sent to customer & owner!",
			"order":       res.Order,
			"items":       res.Items,
			"shipment_id": res.ShipmentID,
		}
		if len(res.Warnings) > 0 {
			body["warnings"] = res.Warnings
		}
		c.JSON(http.StatusCreated, body)
	}
}

// cancelOrderHandler cancels a shipment order and reports the computed refund.
//
//	@Summary  Cancel order
//	@Router   /orders/cancel [post]
func cancelOrderHandler(svc *checkout.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			OrderID string `json:"orderId"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.OrderID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "orderId is required!"})
			return
		}
		res, err := svc.Cancel(c.Request.Context(), req.OrderID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": fmt.Sprintf("Failed to cancel order %s", req.OrderID), "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":       true,
			"message":       fmt.Sprintf("Order %s successfully canceled with refund amount: %s", res.OrderID, res.Refund),
			"refund_amount": res.Refund,
		})
	}
}

// listUserOrdersHandler lists a user's orders; no orders is a valid empty list.
//
//	@Summary  List user orders
//	@Router   /orders/user/{userId} [get]
func listUserOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := repo.ListByUser(c.Request.Context(), c.Param("userId"))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"data": nil, "err": "error fetching data!"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": orders})
	}
}

// getOrderHandler fetches one order with its items, by record or processor id.
//
//	@Summary  Get order
//	@Router   /orders/{id} [get]
func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, items, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"order": o, "items": items})
	}
}

// updateOrderStatusHandler is the local status hook; cancellation does not
// transition orders automatically, callers do it here when they want to.
//
//	@Summary  Update order status
//	@Router   /orders/{id}/status [patch]
func updateOrderStatusHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || !allowedStatuses[req.Status] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		err := repo.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "status": req.Status})
	}
}
