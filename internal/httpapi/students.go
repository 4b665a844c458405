package httpapi

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"classcheck/internal/student"
)

type studentRequest struct {
	ID        string  `json:"id"`
	StudentID string  `json:"studentId" binding:"required"`
	Prefix    string  `json:"prefix" binding:"required"`
	FirstName string  `json:"firstName" binding:"required"`
	LastName  string  `json:"lastName" binding:"required"`
	Level     string  `json:"level" binding:"required"`
	Track     *string `json:"track"`
}

func (a *API) listStudents(c *gin.Context) {
	students, err := a.students.List(c.Request.Context(), c.Query("level"), c.Query("search"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgFetchFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"students": students})
}

func (a *API) createStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	created, err := a.students.Create(c.Request.Context(), student.Student{
		StudentID: req.StudentID,
		Prefix:    req.Prefix,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Level:     req.Level,
		Track:     req.Track,
	})
	if err != nil {
		a.studentError(c, err, msgStudentAddFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": created})
}

func (a *API) updateStudent(c *gin.Context) {
	var req studentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
		return
	}
	updated, err := a.students.Update(c.Request.Context(), student.Student{
		ID:        req.ID,
		StudentID: req.StudentID,
		Prefix:    req.Prefix,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Level:     req.Level,
		Track:     req.Track,
	})
	if err != nil {
		a.studentError(c, err, msgEditFailed)
		return
	}
	c.JSON(http.StatusOK, gin.H{"student": updated})
}

func (a *API) deleteStudent(c *gin.Context) {
	id := c.Query("id")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgSpecifyStudent})
		return
	}
	if err := a.students.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, student.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": msgStudentNotFound})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": msgEditFailed})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": msgStudentDeleted})
}

func (a *API) importStudents(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgUploadFile})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgImportFailed})
		return
	}

	res, err := a.importer.Import(c.Request.Context(), header.Filename, data)
	if err != nil {
		var incomplete *student.ErrIncompleteRows
		switch {
		case errors.As(err, &incomplete):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgIncompleteRows, "invalidRecords": incomplete.Rows})
		case errors.Is(err, student.ErrBadFile):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgUploadFile})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgImportFailed})
		}
		return
	}

	message := "นำเข้าข้อมูลเรียบร้อยแล้ว " + strconv.Itoa(len(res.Students)) + " รายการ"
	if len(res.Errors) > 0 {
		message += " (ผิดพลาด " + strconv.Itoa(len(res.Errors)) + " รายการ)"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":      message,
		"successCount": len(res.Students),
		"errorCount":   len(res.Errors),
		"errors":       res.Errors,
	})
}

func (a *API) studentError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, student.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFillAll})
	case errors.Is(err, student.ErrDuplicateID):
		c.JSON(http.StatusBadRequest, gin.H{"message": msgDuplicateStudentID})
	case errors.Is(err, student.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": msgStudentNotFound})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": fallback})
	}
}
