package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classcheck/internal/auth"
	"classcheck/internal/user"
)

type userRequest struct {
	ID       string  `json:"id"`
	Username string  `json:"username"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
	Name     *string `json:"name"`
}

func (a *API) listUsers(c *gin.Context) {
	users, err := a.users.List(c.Request.Context(),
		c.Query("search"), c.Query("role"), c.Query("sort"), c.Query("order"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (a *API) createUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	created, err := a.users.Create(c.Request.Context(), req.Username, req.Password, req.Role, req.Name)
	if err != nil {
		a.userError(c, err, msgUserCreateFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUserCreated, "user": created})
}

func (a *API) updateUser(c *gin.Context) {
	var req userRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyUserEdit})
		return
	}
	updated, err := a.users.Update(c.Request.Context(), req.ID, req.Username, req.Password, req.Role, req.Name)
	if err != nil {
		a.userError(c, err, msgEditFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUserUpdated, "user": updated})
}

func (a *API) deleteUser(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyUserDel})
		return
	}
	requester := auth.CurrentUser(c)
	if requester == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": msgUnauthorized})
		return
	}
	if err := a.users.Delete(c.Request.Context(), id, requester.ID); err != nil {
		switch {
		case errors.Is(err, user.ErrSelfDelete):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgSelfDelete})
		case errors.Is(err, user.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": msgTargetUserMissing})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgUserDeleteFailed})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgUserDeleted})
}

func (a *API) userError(c *gin.Context, err error, fallback string) {
	var verr *user.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, gin.H{"message": verr.Problems[0], "errors": verr.Problems})
	case errors.Is(err, user.ErrDuplicateUsername):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgDuplicateUsername})
	case errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgTargetUserMissing})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
