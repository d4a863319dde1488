package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/internal/helpers"
	"github.com/nishmithavg/eventease/internal/middleware"
	"github.com/nishmithavg/eventease/internal/models"
)

type EventRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Location    string  `json:"location" binding:"required"`
	Category    string  `json:"category" binding:"required"`
	Date        string  `json:"date" binding:"required"`
	Price       float64 `json:"price" binding:"omitempty,gte=0"`
	Image       string  `json:"image"`
}

type ApproveEventRequest struct {
	Status string `json:"status" binding:"required"`
}

type BlockUserRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required"`
}

// AdminEventRequest is a partial patch; only the fields present in the
// body are applied. Admins may also flip status and the upcoming flag.
type AdminEventRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Location    *string  `json:"location"`
	Category    *string  `json:"category"`
	Date        *string  `json:"date"`
	Price       *float64 `json:"price" binding:"omitempty,gte=0"`
	Image       *string  `json:"image"`
	Status      *string  `json:"status"`
	IsUpcoming  *bool    `json:"isUpcoming"`
}

func CreateEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var existingEvent models.Event
	result := db.Where("title = ? AND date = ? AND category = ? AND organizer_id = ?",
		req.Title, req.Date, req.Category, user.ID).First(&existingEvent)
	if result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Event already exists with same title, date and category.")
		return
	}

	event := models.Event{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Category:    req.Category,
		Date:        req.Date,
		Price:       req.Price,
		Image:       req.Image,
		Status:      models.StatusPending,
		OrganizerID: user.ID,
	}

	if err := db.Create(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Event already exists with same title, date and category.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	helpers.Respond(c, http.StatusCreated, "Event created", event)
}

func ListEvents(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	query := db.Model(&models.Event{})

	if status := c.Query("status"); status != "" {
		if !models.ValidStatus(status) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid status filter.")
			return
		}
		query = query.Where("status = ?", status)
	}
	if upcomingStr := c.Query("upcoming"); upcomingStr != "" {
		upcoming, err := strconv.ParseBool(upcomingStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid upcoming filter.")
			return
		}
		query = query.Where("is_upcoming = ?", upcoming)
	}

	// Authenticated callers never see events they are blocked from;
	// anonymous callers see everything.
	if user, ok := middleware.CurrentUser(c); ok {
		blocked := db.Table("event_blocked_users").Select("event_id").Where("user_id = ?", user.ID)
		query = query.Where("id NOT IN (?)", blocked)
	}

	var events []models.Event
	if err := query.Preload("Organizer").Order("created_at DESC").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Events fetched", events)
}

func GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Preload("Organizer").Preload("BlockedUsers").Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	// Unlike listing, a direct fetch by a blocked caller is an explicit
	// deny rather than a silent omission.
	if user, ok := middleware.CurrentUser(c); ok && event.HasBlockedUser(user.ID) {
		helpers.RespondWithError(c, http.StatusForbidden, "You are blocked from viewing this event.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Event fetched", event)
}

func UpdateEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.OrganizerID != user.ID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to update this event.")
		return
	}

	event.Title = req.Title
	event.Description = req.Description
	event.Location = req.Location
	event.Category = req.Category
	event.Date = req.Date
	event.Price = req.Price
	event.Image = req.Image

	if err := db.Save(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Event already exists with same title, date and category.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Event updated successfully", event)
}

// deleteEventCascade removes the event together with its registrations
// and block-list rows so no dangling references survive.
func deleteEventCascade(db *gorm.DB, event *models.Event) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", event.ID).Delete(&models.Registration{}).Error; err != nil {
			return err
		}
		if err := tx.Model(event).Association("BlockedUsers").Clear(); err != nil {
			return err
		}
		return tx.Delete(event).Error
	})
}

func DeleteEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.OrganizerID != user.ID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to delete this event.")
		return
	}

	if err := deleteEventCascade(db, &event); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Event deleted successfully", nil)
}

// ApproveEvent sets an event's status to approved or rejected. Admins
// may re-invoke it to flip between the two.
func ApproveEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req ApproveEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Status is required.")
		return
	}
	if req.Status != models.StatusApproved && req.Status != models.StatusRejected {
		helpers.RespondWithError(c, http.StatusBadRequest, "Status must be approved or rejected.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	event.Status = req.Status
	if err := db.Save(&event).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	helpers.Respond(c, http.StatusOK, fmt.Sprintf("Event %s", req.Status), event)
}

func MyEvents(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var events []models.Event
	if err := db.Preload("Organizer").Where("organizer_id = ?", user.ID).Order("created_at DESC").Find(&events).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Organizer events fetched", events)
}

// AdminUpdateEvent bypasses the ownership check entirely.
func AdminUpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req AdminEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid status.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if req.Title != nil {
		event.Title = *req.Title
	}
	if req.Description != nil {
		event.Description = *req.Description
	}
	if req.Location != nil {
		event.Location = *req.Location
	}
	if req.Category != nil {
		event.Category = *req.Category
	}
	if req.Date != nil {
		event.Date = *req.Date
	}
	if req.Price != nil {
		event.Price = *req.Price
	}
	if req.Image != nil {
		event.Image = *req.Image
	}
	if req.Status != nil {
		event.Status = *req.Status
	}
	if req.IsUpcoming != nil {
		event.IsUpcoming = *req.IsUpcoming
	}

	if err := db.Save(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Event already exists with same title, date and category.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Event updated successfully", event)
}

func AdminDeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if err := deleteEventCascade(db, &event); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Event deleted successfully", nil)
}

func BlockUserFromEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "User ID is required.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Preload("BlockedUsers").Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.OrganizerID != user.ID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to modify this event.")
		return
	}

	var target models.User
	if err := db.Where("id = ?", req.UserID).First(&target).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "User not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving user.")
		return
	}

	if event.HasBlockedUser(target.ID) {
		helpers.RespondWithError(c, http.StatusBadRequest, "User is already blocked for this event.")
		return
	}

	if err := db.Model(&event).Association("BlockedUsers").Append(&target); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to block user.")
		return
	}

	helpers.Respond(c, http.StatusOK, "User blocked from event", nil)
}

func UnblockUserFromEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	var req BlockUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "User ID is required.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var event models.Event
	if err := db.Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.OrganizerID != user.ID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to modify this event.")
		return
	}

	// Removing an absent entry is a no-op.
	if err := db.Model(&event).Association("BlockedUsers").Delete(&models.User{ID: req.UserID}); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to unblock user.")
		return
	}

	helpers.Respond(c, http.StatusOK, "User unblocked from event", nil)
}
