package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/internal/helpers"
	"github.com/nishmithavg/eventease/internal/middleware"
	"github.com/nishmithavg/eventease/internal/models"
)

// RegistrationWithStatus decorates a registration with whether the
// caller is currently on the event's block list. Blocking after the
// fact does not retract the registration, it only flags it.
type RegistrationWithStatus struct {
	models.Registration
	IsBlocked bool `json:"isBlocked"`
}

func RegisterForEvent(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	if user.Role == models.RoleOrganizer {
		helpers.RespondWithError(c, http.StatusForbidden, "Organizers cannot register for events. Please use an attendee account.")
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
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
	if err := db.Preload("BlockedUsers").Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}

	if event.HasBlockedUser(user.ID) {
		helpers.RespondWithError(c, http.StatusForbidden, "You are blocked from registering for this event.")
		return
	}

	var existing models.Registration
	if result := db.Where("event_id = ? AND user_id = ?", eventID, user.ID).First(&existing); result.Error == nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Already registered.")
		return
	}

	registration := models.Registration{
		EventID: eventID,
		UserID:  user.ID,
	}

	// The (event_id, user_id) unique index is the concurrency guard:
	// two simultaneous attempts yield one row and one duplicate error.
	if err := db.Create(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			helpers.RespondWithError(c, http.StatusBadRequest, "Already registered.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create registration.")
		return
	}

	if err := db.Preload("Event").Preload("User").Where("id = ?", registration.ID).First(&registration).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registration.")
		return
	}

	helpers.Respond(c, http.StatusCreated, "Registered successfully", registration)
}

func MyRegistrations(c *gin.Context) {
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

	var registrations []models.Registration
	err := db.Preload("Event").Preload("Event.Organizer").Preload("Event.BlockedUsers").
		Where("user_id = ?", user.ID).Order("created_at DESC").Find(&registrations).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registrations.")
		return
	}

	flagged := make([]RegistrationWithStatus, 0, len(registrations))
	for _, registration := range registrations {
		isBlocked := registration.Event != nil && registration.Event.HasBlockedUser(user.ID)
		flagged = append(flagged, RegistrationWithStatus{
			Registration: registration,
			IsBlocked:    isBlocked,
		})
	}

	helpers.Respond(c, http.StatusOK, "My registrations fetched", flagged)
}

func CancelRegistration(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	registrationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid registration ID.")
		return
	}

	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var registration models.Registration
	if err := db.Where("id = ?", registrationID).First(&registration).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Registration not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registration.")
		return
	}

	if registration.UserID != user.ID {
		helpers.RespondWithError(c, http.StatusForbidden, "Unauthorized to cancel this registration.")
		return
	}

	if err := db.Delete(&registration).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to cancel registration.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Registration cancelled successfully", nil)
}

func ListRegistrations(c *gin.Context) {
	db := middleware.GetDB(c)
	if db == nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Database connection not found.")
		return
	}

	var registrations []models.Registration
	err := db.Preload("User").Preload("Event").Order("created_at DESC").Find(&registrations).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registrations.")
		return
	}

	helpers.Respond(c, http.StatusOK, "All registrations fetched", registrations)
}

// EventRegistrations is visible to admins and to the event's organizer.
func EventRegistrations(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User not authenticated.")
		return
	}

	eventID, err := uuid.Parse(c.Param("eventId"))
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

	if user.Role != models.RoleAdmin && event.OrganizerID != user.ID {
		helpers.RespondWithError(c, http.StatusForbidden, "Unauthorized. Only admin or event organizer can view registrations.")
		return
	}

	var registrations []models.Registration
	err = db.Preload("User").Where("event_id = ?", eventID).Order("created_at DESC").Find(&registrations).Error
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving registrations.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Event registrations fetched", registrations)
}

// RegistrationCount is public: it exposes a count and nothing else.
func RegistrationCount(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("eventId"))
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

	var count int64
	if err := db.Model(&models.Registration{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error counting registrations.")
		return
	}

	helpers.Respond(c, http.StatusOK, "Registration count fetched", gin.H{
		"count":   count,
		"eventId": eventID,
	})
}
