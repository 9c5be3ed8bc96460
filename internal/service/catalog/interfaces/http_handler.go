package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"atelier/internal/service/catalog/application"
	"atelier/internal/service/catalog/domain"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

const serviceName = "catalog-service"

// CatalogHandler 封装了 catalog 服务的 HTTP 处理器
type CatalogHandler struct {
	service *application.CatalogService
}

// NewCatalogHandler 创建一个新的 HTTP 处理器实例
func NewCatalogHandler(service *application.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CatalogHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/product", h.getProductHandler)
	mux.HandleFunc("/configurator/quote", h.quoteHandler)
}

func (h *CatalogHandler) getProductHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "http.GetProduct")
	defer span.End()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "id must be an integer")
		return
	}

	resp, err := h.service.GetProduct(ctx, id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CatalogHandler) quoteHandler(w http.ResponseWriter, r *http.Request) {
	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "http.ConfiguratorQuote")
	defer span.End()

	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "invalid_request", "POST required")
		return
	}

	var req application.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body")
		return
	}
	if req.ProductID <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "product_id is required")
		return
	}

	resp, err := h.service.QuoteConfiguration(ctx, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// errorResponse 是边界上统一的错误响应契约
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Part    string `json:"part,omitempty"`
	Value   string `json:"value,omitempty"`
}

// writeDomainError 将领域错误映射到 HTTP 状态码和统一的错误载荷
func writeDomainError(w http.ResponseWriter, err error) {
	var invalidOpt *domain.InvalidOptionError
	var incomplete *domain.IncompleteConfigurationError
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "product_not_found", Message: err.Error()})
	case errors.As(err, &invalidOpt):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "invalid_option",
			Message: err.Error(),
			Part:    string(invalidOpt.Part),
			Value:   invalidOpt.Value,
		})
	case errors.As(err, &incomplete):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:   "incomplete_configuration",
			Message: err.Error(),
			Part:    string(incomplete.Part),
		})
	default:
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal_error", Message: err.Error()})
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: code, Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
