package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"classcheck/internal/club"
)

type clubRequest struct {
	ID          string  `json:"id"`
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description" binding:"required"`
	Icon        *string `json:"icon"`
}

type memberRequest struct {
	ClubID    string `json:"clubId" binding:"required"`
	StudentID string `json:"studentId" binding:"required"`
}

type weekRequest struct {
	ClubID string `json:"clubId" binding:"required"`
}

type weekAttendanceRequest struct {
	WeekID   string `json:"weekId" binding:"required"`
	MemberID string `json:"memberId" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// weekDetail inlines the check-in rows the week page renders.
type weekDetail struct {
	club.Week
	Attendance []club.WeekAttendance `json:"attendance"`
}

func (a *API) listClubs(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		cl, err := a.clubs.Get(c.Request.Context(), id)
		if err != nil {
			if errors.Is(err, club.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": msgSpecifyClub})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"club": cl})
		return
	}

	clubs, err := a.clubs.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"clubs": clubs})
}

func (a *API) createClub(c *gin.Context) {
	var req clubRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	created, err := a.clubs.Create(c.Request.Context(), club.Club{
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		a.clubError(c, err, msgClubCreateFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"club": created})
}

func (a *API) updateClub(c *gin.Context) {
	var req clubRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	updated, err := a.clubs.Update(c.Request.Context(), club.Club{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		Icon:        req.Icon,
	})
	if err != nil {
		a.clubError(c, err, msgEditFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"club": updated})
}

func (a *API) deleteClub(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyClubDel})
		return
	}
	if err := a.clubs.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, club.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgSpecifyClub})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgClubDeleteFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgClubDeleted})
}

func (a *API) availableStudents(c *gin.Context) {
	clubID := c.Query("clubId")
	if clubID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyClub})
		return
	}
	students, err := a.clubs.AvailableStudents(c.Request.Context(), clubID, c.Query("level"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (a *API) addMember(c *gin.Context) {
	var req memberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	m, err := a.clubs.AddMember(c.Request.Context(), req.ClubID, req.StudentID)
	if err != nil {
		switch {
		case errors.Is(err, club.ErrDuplicateMember):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgDuplicateMember})
		case errors.Is(err, club.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgMemberAddFailed})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"member": m})
}

func (a *API) removeMember(c *gin.Context) {
	clubID, studentID := c.Query("clubId"), c.Query("studentId")
	if clubID == "" || studentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyMemberDel})
		return
	}
	if err := a.clubs.RemoveMember(c.Request.Context(), clubID, studentID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgMemberDelFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgMemberDeleted})
}

func (a *API) weeks(c *gin.Context) {
	if weekID := c.Query("weekId"); weekID != "" {
		w, rows, err := a.clubs.GetWeek(c.Request.Context(), weekID, c.Query("level"), c.Query("search"))
		if err != nil {
			if errors.Is(err, club.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"message": msgWeekNotFound})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
			return
		}
		c.JSON(http.StatusOK, gin.H{"week": weekDetail{Week: *w, Attendance: rows}})
		return
	}

	clubID := c.Query("clubId")
	if clubID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyClub})
		return
	}
	weeks, err := a.clubs.ListWeeks(c.Request.Context(), clubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": weeks})
}

func (a *API) createWeek(c *gin.Context) {
	var req weekRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyClub})
		return
	}
	w, err := a.clubs.CreateWeek(c.Request.Context(), req.ClubID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgWeekCreateFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"week": w})
}

func (a *API) setWeekAttendance(c *gin.Context) {
	var req weekAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	row, err := a.clubs.SetWeekStatus(c.Request.Context(), req.WeekID, req.MemberID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, club.ErrBadStatus):
			c.JSON(http.StatusBadRequest, gin.H{"message": msgBadStatus})
		case errors.Is(err, club.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": msgCheckinNotFound})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"message": msgCheckinUpdateFailed})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": row})
}

func (a *API) clubError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, club.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
	case errors.Is(err, club.ErrDuplicateName):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgDuplicateClub})
	case errors.Is(err, club.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgSpecifyClub})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
