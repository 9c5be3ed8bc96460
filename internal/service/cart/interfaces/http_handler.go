package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"

	"atelier/internal/pkg/httpclient"
	"atelier/internal/service/cart/application"
	"atelier/internal/service/cart/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "cart-service"

// CartHandler 封装了 cart 服务的 HTTP 处理器
type CartHandler struct {
	service *application.CartService
}

// NewCartHandler 创建一个新的 HTTP 处理器实例
func NewCartHandler(service *application.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/cart", h.getCartHandler)
	mux.HandleFunc("/cart/items/add", h.addItemHandler)
	mux.HandleFunc("/cart/items/update", h.updateQuantityHandler)
	mux.HandleFunc("/cart/items/remove", h.removeItemHandler)
	mux.HandleFunc("/cart/coupon/apply", h.applyCouponHandler)
	mux.HandleFunc("/cart/coupon/remove", h.removeCouponHandler)
	mux.HandleFunc("/cart/clear", h.clearHandler)
}

func (h *CartHandler) getCartHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.GetCart")
	defer span.End()

	cartID := r.URL.Query().Get("cart_id")
	if cartID == "" {
		http.Error(w, "cart_id is required", http.StatusBadRequest)
		return
	}

	view, err := h.service.GetCart(ctx, cartID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, view)
}

func (h *CartHandler) addItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.AddItem")
	defer span.End()

	var req application.AddItemRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.CartID == "" || req.ProductID <= 0 {
		http.Error(w, "cart_id and product_id are required", http.StatusBadRequest)
		return
	}

	view, err := h.service.AddItem(ctx, &req)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, view)
}

func (h *CartHandler) updateQuantityHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.UpdateQuantity")
	defer span.End()

	var req application.UpdateQuantityRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.service.UpdateItemQuantity(ctx, &req)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, view)
}

func (h *CartHandler) removeItemHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.RemoveItem")
	defer span.End()

	var req application.RemoveItemRequest
	if !decodeBody(w, r, &req) {
		return
	}

	view, err := h.service.RemoveItem(ctx, &req)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, view)
}

func (h *CartHandler) applyCouponHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.ApplyCoupon")
	defer span.End()

	var req application.ApplyCouponRequest
	if !decodeBody(w, r, &req) {
		return
	}

	resp, err := h.service.ApplyCoupon(ctx, &req)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, resp)
}

func (h *CartHandler) removeCouponHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.RemoveCoupon")
	defer span.End()

	cartID := r.URL.Query().Get("cart_id")
	if cartID == "" {
		http.Error(w, "cart_id is required", http.StatusBadRequest)
		return
	}

	view, err := h.service.RemoveCoupon(ctx, cartID)
	if err != nil {
		writeCartError(w, err)
		return
	}
	writeJSON(w, view)
}

func (h *CartHandler) clearHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	ctx, span := otel.Tracer(serviceName).Start(ctx, "http.ClearCart")
	defer span.End()

	cartID := r.URL.Query().Get("cart_id")
	if cartID == "" {
		http.Error(w, "cart_id is required", http.StatusBadRequest)
		return
	}

	if err := h.service.Clear(ctx, cartID); err != nil {
		writeCartError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return false
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "malformed JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

// writeCartError 将错误映射到 HTTP 状态码。
// 并发冲突返回 409，是提示客户端重试的信号，不是故障。
func writeCartError(w http.ResponseWriter, err error) {
	var statusErr *httpclient.StatusError
	switch {
	case errors.Is(err, domain.ErrCartConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrLineNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidQuantity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 400 && statusErr.StatusCode < 500:
		// 下游（目录/优惠）的业务拒绝原样传递，例如无效选项
		http.Error(w, statusErr.Body, statusErr.StatusCode)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
