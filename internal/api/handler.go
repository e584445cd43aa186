package api

import (
	"net/http"
	"strconv"
	"time"

	"localmart/internal/apperr"
	"localmart/internal/auth"
	"localmart/internal/models"
	"localmart/internal/service"
	"localmart/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handler contains HTTP handlers
type Handler struct {
	authService    *service.AuthService
	catalogService *service.CatalogService
	cartService    *service.CartService
	orderService   *service.OrderService
	tokens         *auth.TokenManager
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	catalogService *service.CatalogService,
	cartService *service.CartService,
	orderService *service.OrderService,
	tokens *auth.TokenManager,
) *Handler {
	return &Handler{
		authService:    authService,
		catalogService: catalogService,
		cartService:    cartService,
		orderService:   orderService,
		tokens:         tokens,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authRequired := authMiddleware(h.tokens)

	authGroup := router.Group("/api/auth")
	{
		authGroup.POST("/signup", h.signup)
		authGroup.POST("/login", h.login)
	}

	shops := router.Group("/api/shops")
	{
		shops.GET("", h.listShops)
		shops.GET("/nearby", h.nearbyShops)
		shops.GET("/:id", h.getShop)
		shops.POST("/register", authRequired, h.registerShop)
		shops.PUT("/update/:id", authRequired, h.updateShop)
		shops.GET("/analytics/:shopId", authRequired, h.shopAnalytics)
	}

	products := router.Group("/api/products")
	{
		products.GET("", h.listProducts)
		products.GET("/shop/:shopId", h.productsByShop)
		products.GET("/:id", h.getProduct)
		products.POST("/add", authRequired, h.addProduct)
		products.PUT("/:id", authRequired, h.updateProduct)
		products.DELETE("/:id", authRequired, h.deleteProduct)
	}

	cartGroup := router.Group("/api/cart", authRequired)
	{
		cartGroup.GET("", h.getCart)
		cartGroup.DELETE("", h.clearCart)
		cartGroup.POST("/items", h.addCartItem)
		cartGroup.PUT("/items/:productId", h.setCartQuantity)
		cartGroup.DELETE("/items/:productId", h.removeCartItem)
		cartGroup.POST("/toggle", h.toggleCart)
	}

	orders := router.Group("/api/orders", authRequired)
	{
		orders.POST("/create", h.createOrder)
		orders.GET("/my-orders", h.myOrders)
		orders.GET("/shop-orders/:shopId", h.shopOrders)
		orders.PUT("/update-status/:orderId", h.updateOrderStatus)
		orders.PUT("/cancel/:orderId", h.cancelOrder)
		orders.GET("/:orderId", h.getOrder)
	}
}

// respondError maps a service error to its HTTP status class. Field
// errors ride along for InvalidArgument responses.
func respondError(c *gin.Context, err error) {
	status := apperr.HTTPStatus(err)

	if e, ok := apperr.As(err); ok && status != http.StatusInternalServerError {
		body := gin.H{"error": e.Message}
		if len(e.Fields) > 0 {
			body["fields"] = e.Fields
		}
		c.JSON(status, body)
		return
	}

	util.GetLogger().Error("Request failed",
		zap.String("path", c.FullPath()), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// signup handles user registration
func (h *Handler) signup(c *gin.Context) {
	var req service.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	resp, err := h.authService.Signup(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// login handles user login
func (h *Handler) login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// listShops handles listing all active shops
func (h *Handler) listShops(c *gin.Context) {
	shops, err := h.catalogService.ListShops(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

// nearbyShops handles the nearby geo query
func (h *Handler) nearbyShops(c *gin.Context) {
	var lat, lng *float64
	if v, err := strconv.ParseFloat(c.Query("lat"), 64); err == nil {
		lat = &v
	}
	if v, err := strconv.ParseFloat(c.Query("lng"), 64); err == nil {
		lng = &v
	}

	shops, err := h.catalogService.FindNearby(c.Request.Context(), lat, lng)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shops": shops})
}

// getShop handles fetching one shop
func (h *Handler) getShop(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shop, err := h.catalogService.GetShop(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// registerShop handles shop registration
func (h *Handler) registerShop(c *gin.Context) {
	var req service.RegisterShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	shop, err := h.catalogService.RegisterShop(c.Request.Context(), mustClaims(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"shop": shop})
}

// updateShop handles partial shop updates
func (h *Handler) updateShop(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateShopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	shop, err := h.catalogService.UpdateShop(c.Request.Context(), mustClaims(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shop": shop})
}

// shopAnalytics handles the owner dashboard summary
func (h *Handler) shopAnalytics(c *gin.Context) {
	id, ok := parseIDParam(c, "shopId")
	if !ok {
		return
	}

	analytics, err := h.catalogService.Analytics(c.Request.Context(), mustClaims(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analytics": analytics})
}

// listProducts handles the filtered product listing
func (h *Handler) listProducts(c *gin.Context) {
	filter := models.ProductFilter{
		Category: c.Query("category"),
		Search:   c.Query("search"),
	}
	if v, err := strconv.ParseFloat(c.Query("minPrice"), 64); err == nil {
		filter.MinPrice = &v
	}
	if v, err := strconv.ParseFloat(c.Query("maxPrice"), 64); err == nil {
		filter.MaxPrice = &v
	}

	products, err := h.catalogService.ListProducts(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// productsByShop handles listing one shop's products
func (h *Handler) productsByShop(c *gin.Context) {
	id, ok := parseIDParam(c, "shopId")
	if !ok {
		return
	}

	products, err := h.catalogService.ProductsByShop(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

// getProduct handles fetching one product
func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	product, err := h.catalogService.GetProduct(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// addProduct handles product creation
func (h *Handler) addProduct(c *gin.Context) {
	var req service.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	product, err := h.catalogService.AddProduct(c.Request.Context(), mustClaims(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

// updateProduct handles partial product updates
func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req service.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	product, err := h.catalogService.UpdateProduct(c.Request.Context(), mustClaims(c), id, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

// deleteProduct handles product soft-deletion
func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProduct(c.Request.Context(), mustClaims(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
}

// getCart returns the caller's cart
func (h *Handler) getCart(c *gin.Context) {
	state, err := h.cartService.Get(c.Request.Context(), mustClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

type addCartItemRequest struct {
	ProductID int64 `json:"product_id" binding:"required"`
}

// addCartItem adds one unit of a product to the caller's cart
func (h *Handler) addCartItem(c *gin.Context) {
	var req addCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	state, err := h.cartService.AddItem(c.Request.Context(), mustClaims(c), req.ProductID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

type setCartQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// setCartQuantity replaces a cart line's quantity
func (h *Handler) setCartQuantity(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	var req setCartQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	state, err := h.cartService.SetQuantity(c.Request.Context(), mustClaims(c), id, req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// removeCartItem deletes a cart line
func (h *Handler) removeCartItem(c *gin.Context) {
	id, ok := parseIDParam(c, "productId")
	if !ok {
		return
	}

	state, err := h.cartService.RemoveItem(c.Request.Context(), mustClaims(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// clearCart empties the caller's cart
func (h *Handler) clearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), mustClaims(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

// toggleCart flips the cart visibility flag
func (h *Handler) toggleCart(c *gin.Context) {
	state, err := h.cartService.ToggleOpen(c.Request.Context(), mustClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cart": state})
}

// createOrder handles checkout
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	order, items, err := h.orderService.CreateOrder(c.Request.Context(), mustClaims(c), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order, "items": items})
}

// myOrders lists the calling customer's orders
func (h *Handler) myOrders(c *gin.Context) {
	orders, err := h.orderService.MyOrders(c.Request.Context(), mustClaims(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// shopOrders lists a shop's orders for its owner
func (h *Handler) shopOrders(c *gin.Context) {
	id, ok := parseIDParam(c, "shopId")
	if !ok {
		return
	}

	orders, err := h.orderService.ShopOrders(c.Request.Context(), mustClaims(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

type updateStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// updateOrderStatus advances an order through the lifecycle
func (h *Handler) updateOrderStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.FromBinding(err))
		return
	}

	order, err := h.orderService.UpdateStatus(c.Request.Context(), mustClaims(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// cancelOrder cancels an order for its customer
func (h *Handler) cancelOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), mustClaims(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// getOrder fetches one order with its lines
func (h *Handler) getOrder(c *gin.Context) {
	id, ok := parseIDParam(c, "orderId")
	if !ok {
		return
	}

	order, items, err := h.orderService.GetOrder(c.Request.Context(), mustClaims(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "items": items})
}
