// Package httpapi содержит HTTP-слой поверх сервисов: маршрутизацию,
// привязку запросов и трансляцию доменных ошибок в статусы ответов.
package httpapi

import (
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/orderhub/internal/domain"
	"github.com/vladislavdragonenkov/orderhub/internal/metrics"
	"github.com/vladislavdragonenkov/orderhub/internal/service/catalog"
	"github.com/vladislavdragonenkov/orderhub/internal/service/order"
	"github.com/vladislavdragonenkov/orderhub/internal/service/user"
)

// Services — набор прикладных сервисов, которые обслуживает API.
type Services struct {
	Items       *catalog.ItemService
	Categories  *catalog.CategoryService
	Users       *user.Service
	Orders      *order.Service
	Idempotency domain.IdempotencyRepository
}

// NewRouter собирает gin-движок со всеми маршрутами /api/v1.
func NewRouter(services Services, m *metrics.OrderMetrics, logger *log.Entry) *gin.Engine {
	if logger == nil {
		logger = log.WithField("component", "http")
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger(logger), requestMetrics(m))

	items := &itemHandler{items: services.Items}
	categories := &categoryHandler{categories: services.Categories}
	users := &userHandler{users: services.Users}
	orders := &orderHandler{
		orders:  services.Orders,
		idem:    services.Idempotency,
		metrics: m,
		logger:  logger,
	}

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/items", items.list)
		v1.GET("/items/:id", items.get)
		v1.POST("/items", items.create)
		v1.PUT("/items/:id", items.update)
		v1.DELETE("/items/:id", items.delete)

		v1.GET("/categories", categories.list)
		v1.GET("/categories/:id", categories.get)
		v1.POST("/categories", categories.create)
		v1.PUT("/categories/:id", categories.update)
		v1.DELETE("/categories/:id", categories.delete)

		v1.GET("/users", users.list)
		v1.GET("/users/:id", users.get)
		v1.POST("/users", users.create)
		v1.PUT("/users/:id", users.update)

		v1.GET("/orders", orders.list)
		v1.GET("/orders/my", orders.listMine)
		v1.GET("/orders/:id", orders.get)
		v1.POST("/orders", orders.create)
		v1.DELETE("/orders/:id", orders.delete)
		v1.PATCH("/orders/:id/status", orders.changeStatus)
	}

	return engine
}
