package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"classcheck/internal/event"
)

type eventRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description" binding:"required"`
	Date        string   `json:"date" binding:"required"`
	StartTime   string   `json:"startTime" binding:"required"`
	EndTime     string   `json:"endTime" binding:"required"`
	Status      string   `json:"status"`
	Levels      []string `json:"levels" binding:"required"`
}

type attendanceRequest struct {
	EventID   string `json:"eventId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
	Status    string `json:"status" binding:"required"`
}

// eventDetail mirrors the event payload the detail page expects: the
// event with its attendance sheet inlined.
type eventDetail struct {
	event.Event
	Attendance []event.Attendance `json:"attendance"`
}

func (a *API) listEvents(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		e, err := a.events.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, event.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": msgEventNotFound})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
			return
		}
		rows, err := a.events.AttendanceUnfiltered(c.Request.Context(), id)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"event": eventDetail{Event: *e, Attendance: rows}})
		return
	}

	events, err := a.events.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (a *API) createEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	in, ok := a.eventFromRequest(c, req)
	if !ok {
		return
	}
	created, err := a.events.Create(c.Request.Context(), in)
	if err != nil {
		a.eventError(c, err, msgEventCreateFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": created})
}

func (a *API) updateEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	in, ok := a.eventFromRequest(c, req)
	if !ok {
		return
	}
	updated, err := a.events.Update(c.Request.Context(), in)
	if err != nil {
		a.eventError(c, err, msgEditFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"event": updated})
}

func (a *API) deleteEvent(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyEventDel})
		return
	}
	if err := a.events.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, event.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgEventNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgEventDeleteFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgEventDeleted})
}

func (a *API) listEventAttendance(c *gin.Context) {
	eventID := c.Query("eventId")
	if eventID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyEvent})
		return
	}
	rows, err := a.events.Attendance(c.Request.Context(), eventID, c.Query("level"), c.Query("search"))
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgEventNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": rows})
}

func (a *API) setEventAttendance(c *gin.Context) {
	var req attendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	row, err := a.events.SetAttendanceStatus(c.Request.Context(), req.EventID, req.StudentID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, event.ErrBadStatus):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgBadStatus})
		case errors.Is(err, event.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": msgAttendanceNotFound})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgStatusUpdateFailed})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": row})
}

// eventFromRequest parses the wire date; a bad date reads as a missing
// field.
func (a *API) eventFromRequest(c *gin.Context, req eventRequest) (event.Event, bool) {
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return event.Event{}, false
	}
	return event.Event{
		ID:          req.ID,
		Title:       req.Title,
		Description: req.Description,
		Date:        date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		Status:      req.Status,
		Levels:      req.Levels,
	}, true
}

func (a *API) eventError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, event.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
	case errors.Is(err, event.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgEventNotFound})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
