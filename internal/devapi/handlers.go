// Package devapi is a local stand-in for the storefront's external REST
// API. It serves the documented endpoints from in-memory fixtures so the
// client can be developed and demoed without the real service.
package devapi

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/Da1ch1/CoffeeShop/internal/api"
	"github.com/Da1ch1/CoffeeShop/internal/stores/kafka"
	"github.com/Da1ch1/CoffeeShop/pkg/ctxmanage"
	"github.com/Da1ch1/CoffeeShop/pkg/logkey"
)

type Handler struct {
	keys     *Keys
	fixtures *Fixtures
	k        *kafka.Conf // nil when event publishing is not configured
	validate *validator.Validate
}

func NewHandler(keys *Keys, fixtures *Fixtures, k *kafka.Conf) *Handler {
	return &Handler{
		keys:     keys,
		fixtures: fixtures,
		k:        k,
		validate: validator.New(),
	}
}

// API wires the documented endpoints onto a gin engine.
func API(keys *Keys, fixtures *Fixtures, k *kafka.Conf) *gin.Engine {
	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	m, err := NewMid(keys)
	if err != nil {
		panic(err)
	}
	h := NewHandler(keys, fixtures, k)

	r.Use(Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	v1 := r.Group("/api")
	{
		v1.POST("/login", h.Login)
		v1.GET("/productos", h.ListProducts)
		v1.GET("/categorias/:categoria", h.ListCategory)

		authed := v1.Group("")
		authed.Use(m.Authentication())
		authed.GET("/user", h.User)
		authed.POST("/pedidos", h.CreateOrder)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login checks the credentials against the demo accounts. Credential
// failures answer 422, the status the client maps to its credentials
// message.
func (h *Handler) Login(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	var request loginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid login body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validate.Struct(request); err != nil {
		slog.Error("login validation failed", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid credentials"})
		return
	}

	account, ok := h.fixtures.Accounts[strings.ToLower(request.Email)]
	if !ok || bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(request.Password)) != nil {
		slog.Error("credential check failed", slog.String(logkey.TraceID, traceId), slog.String("Email", request.Email))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Invalid credentials"})
		return
	}

	token, err := h.keys.GenerateToken(account.Email, account.Name)
	if err != nil {
		slog.Error("failed to generate token", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Login failed"})
		return
	}

	slog.Info("login succeeded", slog.String(logkey.TraceID, traceId), slog.String("Email", account.Email))
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// ListProducts serves one page of the catalog. A page past the end of the
// fixtures answers an empty array, which ends the client's pagination.
func (h *Handler) ListProducts(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	perPage, err := strconv.Atoi(c.DefaultQuery("per_page", "5"))
	if err != nil || perPage <= 0 {
		slog.Error("invalid per_page parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid per_page parameter"})
		return
	}
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page <= 0 {
		slog.Error("invalid page parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return
	}

	c.JSON(http.StatusOK, h.fixtures.Page(perPage, page))
}

// ListCategory serves the products of one category slug.
func (h *Handler) ListCategory(c *gin.Context) {
	slug := strings.ToLower(c.Param("categoria"))
	c.JSON(http.StatusOK, h.fixtures.ByCategory(slug))
}

// User returns the authenticated account's profile.
func (h *Handler) User(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(ClaimsKey).(Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, ok := h.fixtures.Accounts[claims.Subject]
	if !ok {
		slog.Error("account not found for token subject", slog.String(logkey.TraceID, traceId), slog.String("Email", claims.Subject))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"name": account.Name, "email": account.Email})
}

// CreateOrder validates an order against the fixtures, recomputes the
// total and answers a confirmation. The confirmed event is published to
// kafka in the background when a producer is configured; publish failures
// are logged, never surfaced to the client.
func (h *Handler) CreateOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	claims, ok := c.Request.Context().Value(ClaimsKey).(Claims)
	if !ok {
		slog.Error("claims not found", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var request api.Order
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid order body", slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(request.Products) == 0 {
		slog.Error("order without lines", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Order has no products"})
		return
	}

	total := decimal.Zero
	eventLines := make([]kafka.EventLine, 0, len(request.Products))
	for _, line := range request.Products {
		if line.Quantity < 1 {
			slog.Error("order line with invalid quantity", slog.String(logkey.TraceID, traceId),
				slog.Int(logkey.ProductID, line.ProductID), slog.Int(logkey.Quantity, line.Quantity))
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Quantity must be at least 1"})
			return
		}
		product, found := h.fixtures.ProductByID(line.ProductID)
		if !found {
			slog.Error("order line for unknown product", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, line.ProductID))
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Unknown product in order"})
			return
		}
		if !product.Available {
			slog.Error("order line for unavailable product", slog.String(logkey.TraceID, traceId), slog.Int(logkey.ProductID, line.ProductID))
			c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Product is not available"})
			return
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		eventLines = append(eventLines, kafka.EventLine{ProductID: line.ProductID, Quantity: line.Quantity})
	}
	total = total.Round(2)

	if !total.Equal(request.Total) {
		slog.Error("order total mismatch", slog.String(logkey.TraceID, traceId),
			slog.String("Expected", total.StringFixed(2)), slog.String("Received", request.Total.StringFixed(2)))
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"error": "Order total does not match"})
		return
	}

	orderId := uuid.NewString()
	confirmation := api.OrderConfirmation{ID: orderId, Status: "confirmado", Total: total}

	if h.k != nil {
		event := kafka.OrderConfirmedEvent{
			OrderID:   orderId,
			UserEmail: claims.Subject,
			Lines:     eventLines,
			Total:     total,
			CreatedAt: time.Now().UTC(),
		}
		// Detached from the request context so the publish survives the
		// response being written.
		go func(event kafka.OrderConfirmedEvent) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.k.PublishOrderConfirmed(ctx, event); err != nil {
				slog.Error("failed to publish order event", slog.String(logkey.TraceID, traceId),
					slog.String(logkey.OrderID, event.OrderID), slog.String(logkey.ERROR, err.Error()))
			}
		}(event)
	}

	slog.Info("order confirmed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, orderId), slog.String("Total", total.StringFixed(2)))
	c.JSON(http.StatusOK, confirmation)
}
