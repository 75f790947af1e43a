package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/solara-store/shop/internal/logging"
	"github.com/solara-store/shop/internal/mykafka"
	"github.com/solara-store/shop/internal/service"
)

type CartHandler struct {
	Svc      *service.CartService
	Producer *mykafka.Producer
}

func (h *CartHandler) publish(c echo.Context, event map[string]any) {
	if h.Producer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "cart_events", fmt.Sprint(event["userID"]), event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.get")

	uid, ok := userID(c)
	if !ok {
		l.Error("get_cart_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, dropped, err := h.Svc.GetCart(ctx, uid)
	if err != nil {
		return mapError(l, "get_cart_error", err)
	}

	l.Info("get_cart_success", "user_id", uid)
	return c.JSON(http.StatusOK, map[string]any{
		"cart":             cart,
		"dropped_products": dropped,
	})
}

func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	uid, ok := userID(c)
	if !ok {
		l.Error("add_to_cart_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Quantity < 1 {
		req.Quantity = 1
	}

	cart, err := h.Svc.AddItem(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return mapError(l, "add_to_cart_error", err)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_added",
		"userID":    uid,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})
	l.Info("add_to_cart_success", "user_id", uid, "product_id", req.ProductID)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateQuantity(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.update_quantity")

	uid, ok := userID(c)
	if !ok {
		l.Error("update_quantity_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"quantity"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("update_quantity_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	cart, err := h.Svc.SetItemQuantity(ctx, uid, req.ProductID, req.Quantity)
	if err != nil {
		return mapError(l, "update_quantity_error", err)
	}

	h.publish(c, map[string]any{
		"type":      "cart_quantity_updated",
		"userID":    uid,
		"productID": req.ProductID,
		"quantity":  req.Quantity,
	})
	l.Info("update_quantity_success", "user_id", uid, "product_id", req.ProductID)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	uid, ok := userID(c)
	if !ok {
		l.Error("remove_from_cart_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	pid := parseIntDefault(c.Param("productId"), 0)
	if pid <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	cart, err := h.Svc.RemoveItem(ctx, uid, uint(pid))
	if err != nil {
		return mapError(l, "remove_from_cart_error", err)
	}

	h.publish(c, map[string]any{
		"type":      "cart_item_removed",
		"userID":    uid,
		"productID": pid,
	})
	l.Info("remove_from_cart_success", "user_id", uid, "product_id", pid)
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.clear")

	uid, ok := userID(c)
	if !ok {
		l.Error("clear_cart_error", "status", 401)
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}

	cart, err := h.Svc.Clear(ctx, uid)
	if err != nil {
		return mapError(l, "clear_cart_error", err)
	}

	h.publish(c, map[string]any{
		"type":   "cart_cleared",
		"userID": uid,
	})
	l.Info("clear_cart_success", "user_id", uid)
	return c.JSON(http.StatusOK, cart)
}
