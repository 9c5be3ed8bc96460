package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"atelier/internal/service/order/application"
	"atelier/internal/service/order/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const serviceName = "order-service"

// OrderHandler 封装了 order 服务的 HTTP 处理器
type OrderHandler struct {
	service *application.OrderApplicationService
}

// NewOrderHandler 创建一个新的 HTTP 处理器实例
func NewOrderHandler(service *application.OrderApplicationService) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/checkout", h.checkoutHandler)
	mux.HandleFunc("/orders", h.getOrderHandler)
	mux.HandleFunc("/orders/confirm", h.transitionHandler("http.ConfirmOrder", h.service.Confirm))
	mux.HandleFunc("/orders/cancel", h.transitionHandler("http.CancelOrder", h.service.Cancel))
	mux.HandleFunc("/orders/process", h.transitionHandler("http.ProcessOrder", h.service.MarkProcessing))
	mux.HandleFunc("/orders/ship", h.transitionHandler("http.ShipOrder", h.service.MarkShipped))
	mux.HandleFunc("/orders/deliver", h.transitionHandler("http.DeliverOrder", h.service.MarkDelivered))
	mux.HandleFunc("/orders/refund", h.transitionHandler("http.RefundOrder", h.service.Refund))
}

func startSpan(r *http.Request, name string) (context.Context, trace.Span) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	return otel.Tracer(serviceName).Start(ctx, name)
}

func (h *OrderHandler) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "http.Checkout")
	defer span.End()

	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}

	var req application.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed JSON body", http.StatusBadRequest)
		return
	}
	if req.CartID == "" {
		http.Error(w, "cart_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.Checkout(ctx, &req)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// transitionHandler 为六个状态流转端点生成统一的处理器。
func (h *OrderHandler) transitionHandler(spanName string, apply func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := startSpan(r, spanName)
		defer span.End()

		if r.Method != http.MethodPost {
			http.Error(w, "POST required", http.StatusMethodNotAllowed)
			return
		}

		var req application.TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "malformed JSON body", http.StatusBadRequest)
			return
		}
		if req.OrderID == "" {
			http.Error(w, "order_id is required", http.StatusBadRequest)
			return
		}

		if err := apply(ctx, req.OrderID); err != nil {
			writeOrderError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *OrderHandler) getOrderHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r, "http.GetOrder")
	defer span.End()

	orderID := r.URL.Query().Get("id")
	if orderID == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.GetOrder(ctx, orderID)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// errorResponse 是错误响应的统一结构
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	From    string `json:"from,omitempty"`
	To      string `json:"to,omitempty"`
}

// writeOrderError 把领域错误映射为 HTTP 状态码
func writeOrderError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	var invalidTransition *domain.InvalidTransitionError
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(errorResponse{Error: "order_not_found", Message: err.Error()})
	case errors.Is(err, domain.ErrEmptyCart):
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(errorResponse{Error: "empty_cart", Message: err.Error()})
	case errors.Is(err, domain.ErrStateConflict):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(errorResponse{Error: "state_conflict", Message: err.Error()})
	case errors.As(err, &invalidTransition):
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(errorResponse{
			Error:   "invalid_transition",
			Message: err.Error(),
			From:    string(invalidTransition.From),
			To:      string(invalidTransition.To),
		})
	default:
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(errorResponse{Error: "internal", Message: err.Error()})
	}
}
