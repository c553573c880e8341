package handlers

import (
	"errors"
	"net/http"

	"power_monitor/internal/service"

	"github.com/gin-gonic/gin"
)

// operatorCredentials is the body of both sign-up and sign-in.
type operatorCredentials struct {
	Username string `json:"username" binding:"required" example:"shift-lead"`
	Password string `json:"password" binding:"required" example:"correct horse"`
}

// tokenResponse is returned by sign-in.
type tokenResponse struct {
	Token string `json:"token"`
}

const (
	errAuthDisabled       = "operator auth is disabled"
	errOperatorExists     = "operator already exists"
	errInvalidCredentials = "invalid username or password"
)

// authStatus maps operator errors to an HTTP status and a client message.
func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrAuthDisabled):
		return http.StatusForbidden, errAuthDisabled
	case errors.Is(err, service.ErrOperatorExists):
		return http.StatusConflict, errOperatorExists
	case errors.Is(err, service.ErrInvalidUsername), errors.Is(err, service.ErrWeakPassword):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, errInvalidCredentials
	default:
		return http.StatusInternalServerError, errInternal
	}
}

func (h *Handler) bindCredentials(c *gin.Context) (operatorCredentials, bool) {
	var in operatorCredentials
	if err := c.ShouldBindJSON(&in); err != nil {
		h.log.Infow("auth_bad_request_body", "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return in, false
	}
	return in, true
}

// @Summary      Register an operator
// @Description  Only available when operator auth is enabled. Passwords need at least 8 characters.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      201   {object}  models.Operator
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /auth/sign-up [post]
func (h *Handler) signUp(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	op, err := h.services.Register(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		code, msg := authStatus(err)
		if code == http.StatusInternalServerError {
			h.log.Errorw("operator_register_failed", "err", err, "username", in.Username)
		}
		c.JSON(code, gin.H{"error": msg})
		return
	}

	h.log.Infow("operator_registered", "id", op.ID, "username", op.Username)
	c.JSON(http.StatusCreated, op)
}

// @Summary      Obtain a bearer token
// @Description  The token identifies the operator on /api/control; commands it queues are attributed in the command log.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      operatorCredentials  true  "Credentials"
// @Success      200   {object}  tokenResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /auth/sign-in [post]
func (h *Handler) signIn(c *gin.Context) {
	in, ok := h.bindCredentials(c)
	if !ok {
		return
	}

	token, err := h.services.SignIn(c.Request.Context(), in.Username, in.Password)
	if err != nil {
		code, msg := authStatus(err)
		if code == http.StatusInternalServerError {
			h.log.Errorw("operator_sign_in_failed", "err", err, "username", in.Username)
		} else {
			h.log.Infow("operator_sign_in_rejected", "username", in.Username)
		}
		c.JSON(code, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, tokenResponse{Token: token})
}
