package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"restaurant-api/apperrors"
	"restaurant-api/auth"
	"restaurant-api/middleware"
	"restaurant-api/models"

	"github.com/gin-gonic/gin"
)

const defaultPageLimit = 10

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByKey(ctx context.Context, key auth.LookupKey) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Count(ctx context.Context) (int64, error)
	List(ctx context.Context, limit, offset int) ([]models.User, error)
	Update(ctx context.Context, key auth.LookupKey, fields map[string]interface{}, roles []models.Role) (*models.User, error)
	Delete(ctx context.Context, key auth.LookupKey) error
}

type RoleStore interface {
	FindByNames(ctx context.Context, names []models.RoleName) ([]models.Role, error)
}

type UserHandler struct {
	Users UserStore
	Roles RoleStore
}

type createUserRequest struct {
	Username string            `json:"username" binding:"required"`
	Name     string            `json:"name" binding:"required"`
	Email    string            `json:"email" binding:"required,email"`
	Password string            `json:"password" binding:"required,min=6"`
	Roles    []models.RoleName `json:"roles" binding:"required"`
}

type updateUserRequest struct {
	Username *string            `json:"username"`
	Name     *string            `json:"name"`
	Email    *string            `json:"email"`
	Password *string            `json:"password"`
	Roles    *[]models.RoleName `json:"roles"`
}

// CreateUser registers a new user with at least one known role
func (h *UserHandler) CreateUser(c *gin.Context) {
	ctx := c.Request.Context()

	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(badRequest(err))
		return
	}
	// emails must stay addressable through /users/:uid
	if auth.ClassifyLookupKey(req.Email).Kind != auth.KeyEmail {
		_ = c.Error(fmt.Errorf("%w: invalid email", apperrors.ErrBadRequest))
		return
	}

	taken, err := h.Users.ExistsByEmailOrUsername(ctx, req.Email, req.Username)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if taken {
		_ = c.Error(fmt.Errorf("%w: email or username already registered", apperrors.ErrConflict))
		return
	}

	roles, err := h.resolveRoles(ctx, req.Roles)
	if err != nil {
		_ = c.Error(err)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}

	user := models.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Roles:        roles,
	}
	if err := h.Users.Create(ctx, &user); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// resolveRoles keeps the known roles among names and fails when none is known.
func (h *UserHandler) resolveRoles(ctx context.Context, names []models.RoleName) ([]models.Role, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: at least one role is required", apperrors.ErrBadRequest)
	}
	roles, err := h.Roles.FindByNames(ctx, names)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return nil, fmt.Errorf("%w: none of the roles exist", apperrors.ErrBadRequest)
	}
	return roles, nil
}

// ListUsers returns one page of users, with RFC 5988 Link headers
func (h *UserHandler) ListUsers(c *gin.Context) {
	ctx := c.Request.Context()
	limit := queryInt(c, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	page := queryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}

	users, err := h.Users.List(ctx, limit, limit*(page-1))
	if err != nil {
		_ = c.Error(err)
		return
	}
	total, err := h.Users.Count(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.Header("Link", pageLinks(c.Request.URL.Path, limit, page, total))
	if len(users) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, users)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return v
}

func pageLinks(path string, limit, page int, total int64) string {
	last := int((total + int64(limit) - 1) / int64(limit))
	if last < 1 {
		last = 1
	}
	link := func(p int, rel string) string {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(limit))
		q.Set("page", strconv.Itoa(p))
		return fmt.Sprintf(`<%s?%s>; rel="%s"`, path, q.Encode(), rel)
	}

	links := []string{link(1, "first")}
	if page > 1 {
		links = append(links, link(min(page-1, last), "prev"))
	}
	if page < last {
		links = append(links, link(page+1, "next"))
	}
	links = append(links, link(last, "last"))
	return strings.Join(links, ", ")
}

// authorizeUser classifies the :uid parameter and checks the caller may act on it.
func authorizeUser(c *gin.Context) (auth.LookupKey, error) {
	key := auth.ClassifyLookupKey(c.Param("uid"))
	if !middleware.CurrentPrincipal(c).IsOwnerOrAdmin(key) {
		return key, fmt.Errorf("%w: need owner or admin", apperrors.ErrForbidden)
	}
	return key, nil
}

// GetUser returns a user by id or email (owner or admin)
func (h *UserHandler) GetUser(c *gin.Context) {
	key, err := authorizeUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	user, err := h.Users.FindByKey(c.Request.Context(), key)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser updates a user by id or email. Only admins may change roles.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	ctx := c.Request.Context()
	key, err := authorizeUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	raw, keys, err := readBody(c)
	if _, hasRoles := keys["roles"]; hasRoles && !middleware.CurrentPrincipal(c).IsAdmin() {
		_ = c.Error(fmt.Errorf("%w: only admins can change roles", apperrors.ErrForbidden))
		return
	}
	if err != nil {
		_ = c.Error(err)
		return
	}

	var req updateUserRequest
	if err := bindBody(raw, &req); err != nil {
		_ = c.Error(err)
		return
	}
	fields, err := req.fields()
	if err != nil {
		_ = c.Error(err)
		return
	}

	var roles []models.Role
	if req.Roles != nil {
		if roles, err = h.resolveRoles(ctx, *req.Roles); err != nil {
			_ = c.Error(err)
			return
		}
	}
	if len(fields) == 0 && roles == nil {
		_ = c.Error(fmt.Errorf("%w: no updatable fields", apperrors.ErrBadRequest))
		return
	}

	user, err := h.Users.Update(ctx, key, fields, roles)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// fields validates the request and returns the column updates it carries.
func (r updateUserRequest) fields() (map[string]interface{}, error) {
	if blank(r.Username) || blank(r.Name) || blank(r.Email) {
		return nil, fmt.Errorf("%w: username, name and email cannot be empty", apperrors.ErrBadRequest)
	}
	fields := map[string]interface{}{}
	if r.Username != nil {
		fields["username"] = *r.Username
	}
	if r.Name != nil {
		fields["name"] = *r.Name
	}
	if r.Email != nil {
		if auth.ClassifyLookupKey(*r.Email).Kind != auth.KeyEmail {
			return nil, fmt.Errorf("%w: invalid email", apperrors.ErrBadRequest)
		}
		fields["email"] = *r.Email
	}
	if r.Password != nil {
		hash, err := auth.HashPassword(*r.Password)
		if err != nil {
			return nil, err
		}
		fields["password_hash"] = hash
	}
	return fields, nil
}

// DeleteUser removes a user by id or email (owner or admin)
func (h *UserHandler) DeleteUser(c *gin.Context) {
	key, err := authorizeUser(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if err := h.Users.Delete(c.Request.Context(), key); err != nil {
		_ = c.Error(err)
		return
	}
	c.Status(http.StatusNoContent)
}
