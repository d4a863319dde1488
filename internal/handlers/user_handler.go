package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/internal/helpers"
	"github.com/nishmithavg/eventease/internal/middleware"
	"github.com/nishmithavg/eventease/internal/models"
)

func ListUsers(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var users []models.User
	if err := db.Order("created_at DESC").Find(&users).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving users.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Users fetched", users)
}

// ToggleBlockUser flips the global block flag: a blocked account can no
// longer log in or pass token verification.
func ToggleBlockUser(c *gin.Context) {
	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid user ID.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}

	user.IsBlocked = !user.IsBlocked
	if err := db.Save(&user).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update user.")
		return
	}

	action := "unblocked"
	if user.IsBlocked {
		action = "blocked"
	}
	helpers.Respond(c, http.StatusOK, fmt.Sprintf("User %s", action), user)
}
