package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/metrics"
	"github.com/vladislavdragonenkov/orderhub/internal/service/order"
)

const (
	headerIdempotencyKey = "Idempotency-Key"
	idempotencyTTL       = 24 * time.Hour

	// myOrdersLimit — размер выборки «моих заказов» без пагинации.
	myOrdersLimit = 1000
)

// orderHandler обслуживает workflow заказов.
type orderHandler struct {
	orders  *order.Service
	idem    domain.IdempotencyRepository
	metrics *metrics.OrderMetrics
	logger  *log.Entry
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h *orderHandler) list(c *gin.Context) {
	pageable, err := pageableFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	filter, err := orderFilterFromQuery(c)
	if err != nil {
		writeError(c, err)
		return
	}

	page, err := h.orders.List(c.Request.Context(), pageable, filter)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// listMine возвращает заказы одного клиента одной страницей.
func (h *orderHandler) listMine(c *gin.Context) {
	raw := c.Query("userId")
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || userID <= 0 {
		writeError(c, domain.Validationf("invalid userId %q", raw))
		return
	}

	pageable := domain.Pageable{Page: 1, Limit: myOrdersLimit}
	page, err := h.orders.List(c.Request.Context(), pageable, domain.OrderFilter{ClientID: userID})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

func (h *orderHandler) get(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// create создаёт заказ. Заголовок Idempotency-Key делает операцию
// повторяемой: завершённый ответ воспроизводится байт в байт, повтор
// ключа с другим телом — конфликт.
func (h *orderHandler) create(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeError(c, domain.Validationf("failed to read request body: %v", err))
		return
	}

	key := strings.TrimSpace(c.GetHeader(headerIdempotencyKey))
	if key != "" && h.idem != nil {
		if done := h.beginIdempotent(c, key, body); done {
			return
		}
	}

	status, payload := h.createOrder(c, body)
	if key != "" && h.idem != nil {
		h.finishIdempotent(key, status, payload)
	}
	c.Data(status, "application/json; charset=utf-8", payload)
}

// beginIdempotent регистрирует ключ. Возвращает true, если ответ уже
// отдан (replay или конфликт) и обработка не нужна.
func (h *orderHandler) beginIdempotent(c *gin.Context, key string, body []byte) bool {
	sum := sha256.Sum256(body)
	requestHash := hex.EncodeToString(sum[:])

	_, err := h.idem.CreateProcessing(key, requestHash, time.Now().UTC().Add(idempotencyTTL))
	switch {
	case err == nil:
		return false
	case errors.Is(err, domain.ErrIdempotencyHashMismatch):
		writeError(c, err)
		return true
	case errors.Is(err, domain.ErrIdempotencyKeyAlreadyExists):
		record, getErr := h.idem.Get(key)
		if getErr != nil {
			writeError(c, getErr)
			return true
		}
		if record.Status.Finished() {
			c.Data(record.HTTPStatus, "application/json; charset=utf-8", record.ResponseBody)
			return true
		}
		c.JSON(http.StatusConflict, errorResponse{Error: "request with this idempotency key is still being processed"})
		return true
	default:
		writeError(c, err)
		return true
	}
}

func (h *orderHandler) finishIdempotent(key string, status int, payload []byte) {
	var err error
	if status < http.StatusBadRequest {
		err = h.idem.MarkDone(key, payload, status)
	} else {
		err = h.idem.MarkFailed(key, payload, status)
	}
	if err != nil {
		h.logger.WithError(err).WithField("idempotency_key", key).Warn("failed to finalize idempotency record")
	}
}

// createOrder выполняет команду и возвращает статус с готовым JSON-телом.
func (h *orderHandler) createOrder(c *gin.Context, body []byte) (int, []byte) {
	var cmd domain.CreateOrder
	if err := json.Unmarshal(body, &cmd); err != nil {
		verr := domain.Validationf("invalid request body: %v", err)
		return statusFor(verr), mustJSON(errorResponse{Error: verr.Error()})
	}

	created, err := h.orders.Create(c.Request.Context(), cmd)
	if err != nil {
		if h.metrics != nil {
			h.metrics.RecordOrderCreateFailure()
		}
		return statusFor(err), mustJSON(errorResponse{Error: err.Error()})
	}

	if h.metrics != nil {
		h.metrics.RecordOrderCreated()
		h.metrics.RecordOutboxEvent()
		h.metrics.RecordTimelineEvent()
	}
	return http.StatusCreated, mustJSON(created)
}

func (h *orderHandler) delete(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.orders.Delete(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordOrderDeleted()
	}
	c.Status(http.StatusNoContent)
}

func (h *orderHandler) changeStatus(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		writeError(c, err)
		return
	}

	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, domain.Validationf("invalid request body: %v", err))
		return
	}

	o, err := h.orders.ChangeStatus(c.Request.Context(), id, domain.OrderStatus(req.Status))
	if err != nil {
		writeError(c, err)
		return
	}
	if h.metrics != nil {
		h.metrics.RecordOrderStatusChange(string(o.Status))
	}
	c.JSON(http.StatusOK, o)
}

// orderFilterFromQuery собирает OrderFilter из query string.
// status и paymentMethod принимают несколько значений через запятую.
func orderFilterFromQuery(c *gin.Context) (domain.OrderFilter, error) {
	filter := domain.OrderFilter{
		SearchName: c.Query("searchName"),
		DateFrom:   c.Query("dateFrom"),
		DateTo:     c.Query("dateTo"),
	}

	if raw := c.Query("clientId"); raw != "" {
		clientID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.OrderFilter{}, domain.Validationf("invalid clientId %q", raw)
		}
		filter.ClientID = clientID
	}

	for _, value := range splitCSV(c.Query("status")) {
		filter.Status = append(filter.Status, domain.OrderStatus(value))
	}
	for _, value := range splitCSV(c.Query("paymentMethod")) {
		filter.PaymentMethod = append(filter.PaymentMethod, domain.PaymentMethod(value))
	}

	return filter, nil
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte(`{"error":"internal serialization failure"}`)
	}
	return data
}
