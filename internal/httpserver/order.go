package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solara-store/shop/internal/logging"
	"github.com/solara-store/shop/internal/models"
	"github.com/solara-store/shop/internal/mykafka"
	"github.com/solara-store/shop/internal/notify"
	"github.com/solara-store/shop/internal/service"
	"github.com/solara-store/shop/internal/util"
)

type OrderHandler struct {
	Svc      *service.OrderService
	Producer *mykafka.Producer

	// WhatsAppNumber, when set, adds a wa.me deep link with the order
	// summary to checkout responses.
	WhatsAppNumber string
}

func (h *OrderHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "order_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *OrderHandler) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	uid, ok := userID(c)
	if !ok {
		l.Error("checkout_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		Shipping models.ShippingAddress `json:"shipping"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("checkout_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.Create(ctx, uid, req.Shipping)
	if err != nil {
		return mapError(l, "checkout_error", err)
	}

	h.publish(c, map[string]any{
		"type":        "order_created",
		"userID":      uid,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"grandTotal":  order.GrandTotal,
	})
	l.Info("checkout_success", "user_id", uid, "order_number", order.OrderNumber)

	resp := map[string]any{"order": order}
	if h.WhatsAppNumber != "" {
		resp["whatsapp_link"] = notify.WhatsAppLink(h.WhatsAppNumber, notify.OrderMessage(order))
	}
	return c.JSON(http.StatusCreated, resp)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	uid, ok := userID(c)
	if !ok {
		l.Error("get_order_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id := parseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, err := h.Svc.Get(ctx, uint(id), uid, isAdmin(c))
	if err != nil {
		return mapError(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListMyOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_mine")

	uid, ok := userID(c)
	if !ok {
		l.Error("list_orders_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.ListForUser(ctx, uid, offset, limit)
	if err != nil {
		return mapError(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_all")

	page := parseIntDefault(c.QueryParam("page"), 1)
	size := parseIntDefault(c.QueryParam("size"), util.DefaultPageSize)
	offset, limit := util.Calculate(page, size)

	orders, total, err := h.Svc.ListAll(ctx, offset, limit)
	if err != nil {
		return mapError(l, "list_all_orders_error", err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"data": orders,
		"meta": pageMeta(page, limit, offset, total),
	})
}

func (h *OrderHandler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	uid, ok := userID(c)
	if !ok {
		l.Error("cancel_order_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	id := parseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	order, skipped, err := h.Svc.Cancel(ctx, uint(id), uid, isAdmin(c))
	if err != nil {
		return mapError(l, "cancel_order_error", err)
	}

	h.publish(c, map[string]any{
		"type":        "order_cancelled",
		"userID":      uid,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
	})
	l.Info("cancel_order_success", "order_id", order.ID)
	return c.JSON(http.StatusOK, map[string]any{
		"order":            order,
		"skipped_products": skipped,
	})
}

func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id := parseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		Status models.OrderStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_status_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.UpdateStatus(ctx, uint(id), req.Status)
	if err != nil {
		return mapError(l, "update_status_error", err)
	}

	h.publish(c, map[string]any{
		"type":        "order_status_updated",
		"userID":      order.UserID,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
	})
	l.Info("update_status_success", "order_id", order.ID, "new_status", order.Status)
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) AddTracking(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.add_tracking")

	id := parseIntDefault(c.Param("id"), 0)
	if id <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid order id")
	}

	var req struct {
		AWB     string `json:"awb"`
		Courier string `json:"courier"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_tracking_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	order, err := h.Svc.AddTracking(ctx, uint(id), req.AWB, req.Courier)
	if err != nil {
		return mapError(l, "add_tracking_error", err)
	}

	h.publish(c, map[string]any{
		"type":        "order_shipped",
		"userID":      order.UserID,
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"awb":         order.AWB,
		"courier":     order.Courier,
	})
	l.Info("add_tracking_success", "order_id", order.ID, "awb", order.AWB)
	return c.JSON(http.StatusOK, order)
}
