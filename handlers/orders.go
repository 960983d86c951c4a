package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/middleware"
	"restaurant-api/models"
	"restaurant-api/repository"
	"restaurant-api/statemachine"

	"github.com/gin-gonic/gin"
)

type OrderStore interface {
	Create(ctx context.Context, order *models.Order, changedBy string) error
	List(ctx context.Context, userID string) ([]models.Order, error)
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, id string, changes repository.OrderChanges) (*models.Order, error)
	Delete(ctx context.Context, id string) error
	History(ctx context.Context, orderID string) ([]models.OrderStatusHistory, error)
}

type UserLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

type ProductLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Product, error)
}

type OrderHandler struct {
	Orders   OrderStore
	Users    UserLookup
	Products ProductLookup
	Now      func() time.Time
}

type orderLineRequest struct {
	Product string `json:"product" binding:"required"`
	Qty     int    `json:"qty" binding:"required,gt=0"`
}

type createOrderRequest struct {
	UserID        string             `json:"userId" binding:"required"`
	Client        string             `json:"client" binding:"required"`
	Products      []orderLineRequest `json:"products" binding:"required,min=1,dive"`
	Status        models.OrderStatus `json:"status"`
	DateProcessed *time.Time         `json:"dateProcessed"`
}

type updateOrderRequest struct {
	UserID        *string             `json:"userId"`
	Client        *string             `json:"client"`
	Products      *[]orderLineRequest `json:"products"`
	Status        *models.OrderStatus `json:"status"`
	DateProcessed *time.Time          `json:"dateProcessed"`
}

// OrderUser is the part of the ordering user exposed with an order.
type OrderUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type OrderLineResponse struct {
	ProductID string `json:"productId"`
	// Product is nil when the product was deleted after the order was placed.
	Product *models.Product `json:"product"`
	Qty     int             `json:"qty"`
}

type OrderResponse struct {
	ID            string              `json:"id"`
	UserID        string              `json:"userId"`
	User          *OrderUser          `json:"user"`
	Client        string              `json:"client"`
	Products      []OrderLineResponse `json:"products"`
	Status        models.OrderStatus  `json:"status"`
	DateProcessed time.Time           `json:"dateProcessed"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

func (h *OrderHandler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// CreateOrder places a new order for a client
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	raw, _, err := readBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req createOrderRequest
	if err := bindBody(raw, &req); err != nil {
		_ = c.Error(err)
		return
	}
	if blank(&req.Client) {
		_ = c.Error(fmt.Errorf("%w: client cannot be empty", apperrors.ErrBadRequest))
		return
	}
	if req.Status == "" {
		req.Status = models.StatusPending
	}
	if !req.Status.Valid() {
		_ = c.Error(fmt.Errorf("%w: unknown order status %q", apperrors.ErrBadRequest, req.Status))
		return
	}
	if err := h.checkReferences(ctx, &req.UserID, req.Products); err != nil {
		_ = c.Error(err)
		return
	}

	order := models.Order{
		UserID:        req.UserID,
		Client:        strings.TrimSpace(req.Client),
		Lines:         toLines(req.Products),
		Status:        req.Status,
		DateProcessed: h.now(),
	}
	if req.DateProcessed != nil {
		order.DateProcessed = *req.DateProcessed
	}

	if err := h.Orders.Create(ctx, &order, middleware.CurrentPrincipal(c).ID); err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, http.StatusCreated, &order)
}

// checkReferences verifies that the user and every product exist.
// Nil or empty arguments are not checked.
func (h *OrderHandler) checkReferences(ctx context.Context, userID *string, lines []orderLineRequest) error {
	if userID != nil {
		users, err := h.Users.FindByIDs(ctx, []string{*userID})
		if err != nil {
			return err
		}
		if len(users) == 0 {
			return fmt.Errorf("%w: user %q does not exist", apperrors.ErrBadRequest, *userID)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	ids := make([]string, len(lines))
	for i, l := range lines {
		ids[i] = l.Product
	}
	ids = uniqueStrings(ids)
	products, err := h.Products.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(products) != len(ids) {
		return fmt.Errorf("%w: order references unknown products", apperrors.ErrBadRequest)
	}
	return nil
}

func toLines(reqs []orderLineRequest) []models.OrderLine {
	lines := make([]models.OrderLine, len(reqs))
	for i, r := range reqs {
		lines[i] = models.OrderLine{ProductID: r.Product, Qty: r.Qty}
	}
	return lines
}

// ListOrders returns every order for admins and chefs, and the caller's own orders otherwise
func (h *OrderHandler) ListOrders(c *gin.Context) {
	p := middleware.CurrentPrincipal(c)
	owner := p.ID
	if p.CanManageOrders() {
		owner = ""
	}

	orders, err := h.Orders.List(c.Request.Context(), owner)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	resp, err := h.assemble(c.Request.Context(), orders)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// loadOrder fetches the :orderId order and applies order scoping for the caller.
func (h *OrderHandler) loadOrder(c *gin.Context, allowed func(*auth.Principal, string) bool) (*models.Order, error) {
	order, err := h.Orders.FindByID(c.Request.Context(), c.Param("orderId"))
	if err != nil {
		return nil, err
	}
	if !allowed(middleware.CurrentPrincipal(c), order.UserID) {
		return nil, fmt.Errorf("%w: order belongs to another user", apperrors.ErrForbidden)
	}
	return order, nil
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.loadOrder(c, (*auth.Principal).CanAccessOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, http.StatusOK, order)
}

// UpdateOrder changes order fields and moves it through its lifecycle
func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	ctx := c.Request.Context()
	raw, _, err := readBody(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	order, err := h.loadOrder(c, (*auth.Principal).CanAccessOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req updateOrderRequest
	if err := bindBody(raw, &req); err != nil {
		_ = c.Error(err)
		return
	}
	changes, err := req.changes(order)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var lines []orderLineRequest
	if req.Products != nil {
		lines = *req.Products
	}
	if err := h.checkReferences(ctx, req.UserID, lines); err != nil {
		_ = c.Error(err)
		return
	}
	if changes.History != nil {
		changes.History.ChangedBy = middleware.CurrentPrincipal(c).ID
	}

	updated, err := h.Orders.Update(ctx, order.ID, changes)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, http.StatusCreated, updated)
}

// changes validates the request against the current order.
func (r updateOrderRequest) changes(order *models.Order) (repository.OrderChanges, error) {
	changes := repository.OrderChanges{Fields: map[string]interface{}{}}
	if r.UserID == nil && r.Client == nil && r.Products == nil && r.Status == nil && r.DateProcessed == nil {
		return changes, fmt.Errorf("%w: no updatable fields", apperrors.ErrBadRequest)
	}

	if r.Status != nil {
		if !r.Status.Valid() {
			return changes, fmt.Errorf("%w: unknown order status %q", apperrors.ErrBadRequest, *r.Status)
		}
		if err := statemachine.CanTransition(order.Status, *r.Status); err != nil {
			return changes, fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
		}
		if *r.Status != order.Status {
			changes.Fields["status"] = *r.Status
			changes.History = &models.OrderStatusHistory{FromStatus: order.Status, ToStatus: *r.Status}
		}
	}
	if r.UserID != nil {
		if blank(r.UserID) {
			return changes, fmt.Errorf("%w: userId cannot be empty", apperrors.ErrBadRequest)
		}
		changes.Fields["user_id"] = *r.UserID
	}
	if r.Client != nil {
		if blank(r.Client) {
			return changes, fmt.Errorf("%w: client cannot be empty", apperrors.ErrBadRequest)
		}
		changes.Fields["client"] = strings.TrimSpace(*r.Client)
	}
	if r.DateProcessed != nil {
		changes.Fields["date_processed"] = *r.DateProcessed
	}
	if r.Products != nil {
		if len(*r.Products) == 0 {
			return changes, fmt.Errorf("%w: an order needs at least one product", apperrors.ErrBadRequest)
		}
		for _, l := range *r.Products {
			if l.Product == "" || l.Qty <= 0 {
				return changes, fmt.Errorf("%w: each product needs an id and a positive qty", apperrors.ErrBadRequest)
			}
		}
		changes.Lines = toLines(*r.Products)
	}
	return changes, nil
}

// DeleteOrder removes an order (owner or admin)
func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	order, err := h.loadOrder(c, (*auth.Principal).CanDeleteOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Orders.Delete(c.Request.Context(), order.ID); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetOrderHistory returns the status changes of an order, oldest first
func (h *OrderHandler) GetOrderHistory(c *gin.Context) {
	order, err := h.loadOrder(c, (*auth.Principal).CanAccessOrder)
	if err != nil {
		_ = c.Error(err)
		return
	}
	history, err := h.Orders.History(c.Request.Context(), order.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, history)
}

func (h *OrderHandler) respond(c *gin.Context, status int, order *models.Order) {
	resp, err := h.assemble(c.Request.Context(), []models.Order{*order})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(status, resp[0])
}

// assemble joins orders with their users and products using one batch fetch each.
func (h *OrderHandler) assemble(ctx context.Context, orders []models.Order) ([]OrderResponse, error) {
	var userIDs, productIDs []string
	for _, o := range orders {
		userIDs = append(userIDs, o.UserID)
		for _, l := range o.Lines {
			productIDs = append(productIDs, l.ProductID)
		}
	}

	users, err := h.Users.FindByIDs(ctx, uniqueStrings(userIDs))
	if err != nil {
		return nil, err
	}
	products, err := h.Products.FindByIDs(ctx, uniqueStrings(productIDs))
	if err != nil {
		return nil, err
	}

	usersByID := make(map[string]*OrderUser, len(users))
	for _, u := range users {
		usersByID[u.ID] = &OrderUser{ID: u.ID, Name: u.Name}
	}
	productsByID := make(map[string]*models.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	resp := make([]OrderResponse, len(orders))
	for i, o := range orders {
		lines := make([]OrderLineResponse, len(o.Lines))
		for j, l := range o.Lines {
			lines[j] = OrderLineResponse{ProductID: l.ProductID, Product: productsByID[l.ProductID], Qty: l.Qty}
		}
		resp[i] = OrderResponse{
			ID:            o.ID,
			UserID:        o.UserID,
			User:          usersByID[o.UserID],
			Client:        o.Client,
			Products:      lines,
			Status:        o.Status,
			DateProcessed: o.DateProcessed,
			CreatedAt:     o.CreatedAt,
			UpdatedAt:     o.UpdatedAt,
		}
	}
	return resp, nil
}
