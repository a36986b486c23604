package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/ticketdesk/dashboard/internal/core/domain"
)

// DirectoryHandler serves the department, user and settings screens.
type DirectoryHandler struct{}

func NewDirectoryHandler() *DirectoryHandler { return &DirectoryHandler{} }

// ---------------------------------------------------------------------------
// Departments
// ---------------------------------------------------------------------------

// ListDepartments handles GET /departments.
//
// @Summary      List departments
// @Tags         departments
// @Produce      json
// @Param        page    query     int     false  "Page (1-based)"
// @Param        limit   query     int     false  "Page size"
// @Param        search  query     string  false  "Name filter"
// @Success      200     {object}  service.List[domain.Department]
// @Router       /departments [get]
func (h *DirectoryHandler) ListDepartments(c echo.Context) error {
	var req listRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	list, err := ws.Services.Departments.List(c.Request().Context(), req.filter())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetDepartment handles GET /departments/:id.
//
// @Summary      Get a department
// @Tags         departments
// @Produce      json
// @Param        id   path      string  true  "Department id"
// @Success      200  {object}  domain.Department
// @Failure      404  {object}  errorResponse
// @Router       /departments/{id} [get]
func (h *DirectoryHandler) GetDepartment(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	d, err := ws.Services.Departments.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// CreateDepartment handles POST /departments.
//
// @Summary      Create a department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        body  body      departmentRequest  true  "Department"
// @Success      201   {object}  domain.Department
// @Router       /departments [post]
func (h *DirectoryHandler) CreateDepartment(c echo.Context) error {
	var req departmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	d, err := ws.Services.Departments.Create(c.Request().Context(), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, d)
}

// RenameDepartment handles PUT /departments/:id.
//
// @Summary      Rename a department
// @Tags         departments
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "Department id"
// @Param        body  body      departmentRequest  true  "Department"
// @Success      200   {object}  domain.Department
// @Router       /departments/{id} [put]
func (h *DirectoryHandler) RenameDepartment(c echo.Context) error {
	var req departmentRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	d, err := ws.Services.Departments.Rename(c.Request().Context(), c.Param("id"), req.Name)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, d)
}

// DeleteDepartment handles DELETE /departments/:id.
//
// @Summary      Delete a department
// @Tags         departments
// @Produce      json
// @Param        id   path      string  true  "Department id"
// @Success      200  {object}  messageResponse
// @Router       /departments/{id} [delete]
func (h *DirectoryHandler) DeleteDepartment(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	if err := ws.Services.Departments.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "department deleted"})
}

// ---------------------------------------------------------------------------
// Users
// ---------------------------------------------------------------------------

// ListUsers handles GET /users.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Param        page           query     int     false  "Page (1-based)"
// @Param        limit          query     int     false  "Page size"
// @Param        search         query     string  false  "Username or email"
// @Param        tenant_id      query     string  false  "Tenant (superAdmin only)"
// @Param        department_id  query     string  false  "Department"
// @Param        role           query     string  false  "Role"
// @Success      200            {object}  service.List[domain.User]
// @Router       /users [get]
func (h *DirectoryHandler) ListUsers(c echo.Context) error {
	var req userListRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	list, err := ws.Services.Users.List(c.Request().Context(), domain.UserFilter{
		PageRequest:  domain.PageRequest{Page: req.Page, Limit: req.Limit},
		TenantID:     req.TenantID,
		DepartmentID: req.DepartmentID,
		Role:         domain.Role(req.Role),
		Search:       req.Search,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list)
}

// GetUser handles GET /users/:id.
//
// @Summary      Get a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.User
// @Router       /users/{id} [get]
func (h *DirectoryHandler) GetUser(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	u, err := ws.Services.Users.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// CreateEmployee handles POST /users.
//
// @Summary      Register an employee
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      createEmployeeRequest  true  "Employee"
// @Success      201   {object}  domain.User
// @Failure      422   {object}  errorResponse
// @Router       /users [post]
func (h *DirectoryHandler) CreateEmployee(c echo.Context) error {
	var req createEmployeeRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	u, err := ws.Services.Users.CreateEmployee(c.Request().Context(), domain.EmployeeRegistration{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, u)
}

// UpdateUser handles PUT /users/:id.
//
// @Summary      Update a user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        id    path      string             true  "User id"
// @Param        body  body      updateUserRequest  true  "Fields to change"
// @Success      200   {object}  domain.User
// @Router       /users/{id} [put]
func (h *DirectoryHandler) UpdateUser(c echo.Context) error {
	var req updateUserRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	u, err := ws.Services.Users.Update(c.Request().Context(), c.Param("id"), domain.UserUpdate{
		Username:     req.Username,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		TenantID:     req.TenantID,
		DepartmentID: req.DepartmentID,
		Password:     req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// DeleteUser handles DELETE /users/:id.
//
// @Summary      Delete a user
// @Tags         users
// @Produce      json
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  messageResponse
// @Router       /users/{id} [delete]
func (h *DirectoryHandler) DeleteUser(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	if err := ws.Services.Users.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "user deleted"})
}

// ChangePassword handles POST /account/password for any signed-in user.
//
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      changePasswordRequest  true  "Passwords"
// @Success      200   {object}  domain.User
// @Failure      401   {object}  errorResponse
// @Router       /account/password [post]
func (h *DirectoryHandler) ChangePassword(c echo.Context) error {
	var req changePasswordRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	u, err := ws.Services.Users.ChangePassword(c.Request().Context(), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, u)
}

// ---------------------------------------------------------------------------
// Settings
// ---------------------------------------------------------------------------

// Settings handles GET /settings.
//
// @Summary      Company settings
// @Tags         settings
// @Produce      json
// @Success      200  {object}  domain.TenantSettings
// @Router       /settings [get]
func (h *DirectoryHandler) Settings(c echo.Context) error {
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	s, err := ws.Services.Settings.Details(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}

// UpdateWebhook handles PUT /settings/webhook. An empty URL removes it.
//
// @Summary      Set the company webhook
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        body  body      webhookRequest  true  "Webhook"
// @Success      200   {object}  domain.TenantSettings
// @Router       /settings/webhook [put]
func (h *DirectoryHandler) UpdateWebhook(c echo.Context) error {
	var req webhookRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	ws, err := workspaceOf(c)
	if err != nil {
		return err
	}
	s, err := ws.Services.Settings.UpdateWebhook(c.Request().Context(), req.WebhookURL)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, s)
}
