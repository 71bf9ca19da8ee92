package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/campusview/attendance-api/internal/dto"
	"github.com/campusview/attendance-api/internal/models"
	appErrors "github.com/campusview/attendance-api/pkg/errors"
	"github.com/campusview/attendance-api/pkg/export"
	"github.com/campusview/attendance-api/pkg/response"
)

type attendanceFetcher interface {
	FetchOne(ctx context.Context, rollNumber, campus string) models.FetchResult
	FetchGroup(ctx context.Context, rollNumbers []string, campus string) []models.FetchResult
}

type groupGetter interface {
	Get(namespace, name string) (*models.Group, error)
}

type refreshMarker interface {
	MarkServed(name string, rollNumbers []string, campus string)
}

// AttendanceHandler exposes attendance read and export endpoints.
type AttendanceHandler struct {
	attendance attendanceFetcher
	groups     groupGetter
	refresh    refreshMarker
}

// NewAttendanceHandler builds a new handler. refresh may be nil when the
// background refresh worker is disabled.
func NewAttendanceHandler(attendance attendanceFetcher, groups groupGetter, refresh refreshMarker) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, groups: groups, refresh: refresh}
}

// GetSingle godoc
// @Summary Fetch attendance for one roll number
// @Tags Attendance
// @Produce json
// @Param roll path string true "Roll number"
// @Param campus query string false "Campus code"
// @Success 200 {object} response.Envelope
// @Router /attendance/{roll} [get]
func (h *AttendanceHandler) GetSingle(c *gin.Context) {
	roll := c.Param("roll")
	if !dto.ValidRollNumber(roll) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid roll number"))
		return
	}
	var query dto.AttendanceQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid campus"))
		return
	}

	result := h.attendance.FetchOne(c.Request.Context(), roll, query.Campus)
	if !result.Success {
		response.Error(c, appErrors.Clone(appErrors.ErrUpstream, result.Error))
		return
	}
	response.JSON(c, http.StatusOK, result.Snapshot)
}

// GetGroup godoc
// @Summary Fetch attendance for every member of a group
// @Tags Attendance
// @Produce json
// @Param name path string true "Group name"
// @Success 200 {object} response.Envelope
// @Router /groups/{name}/attendance [get]
func (h *AttendanceHandler) GetGroup(c *gin.Context) {
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}

	results := h.attendance.FetchGroup(c.Request.Context(), group.RollNumbers, group.Campus)
	if h.refresh != nil {
		h.refresh.MarkServed(group.Name, group.RollNumbers, group.Campus)
	}
	response.JSON(c, http.StatusOK, results)
}

// Export godoc
// @Summary Export a group attendance report
// @Tags Attendance
// @Produce text/csv
// @Produce application/pdf
// @Param name path string true "Group name"
// @Param format query string false "csv (default) or pdf"
// @Success 200
// @Router /groups/{name}/attendance/export [get]
func (h *AttendanceHandler) Export(c *gin.Context) {
	group, ok := h.lookupGroup(c)
	if !ok {
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export format"))
		return
	}
	format := query.Format
	if format == "" {
		format = dto.ExportFormatCSV
	}

	results := h.attendance.FetchGroup(c.Request.Context(), group.RollNumbers, group.Campus)
	dataset := reportDataset(results)

	switch format {
	case dto.ExportFormatPDF:
		payload, err := export.PDF(dataset, group.Name+" attendance")
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", group.Name+"-attendance.pdf"))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		payload, err := export.CSV(dataset)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", group.Name+"-attendance.csv"))
		c.Data(http.StatusOK, "text/csv", payload)
	}
}

func (h *AttendanceHandler) lookupGroup(c *gin.Context) (*models.Group, bool) {
	name := c.Param("name")
	if !dto.ValidGroupName(name) {
		response.Error(c, appErrors.ErrValidation)
		return nil, false
	}
	group, err := h.groups.Get(namespaceFromRequest(c), name)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return group, true
}

func reportDataset(results []models.FetchResult) export.Dataset {
	headers := []string{"Roll", "Name", "Today", "Yesterday", "Day Before", "Overall %", "Status"}
	rows := make([]map[string]string, 0, len(results))
	for _, r := range results {
		row := map[string]string{"Roll": r.RollNumber}
		if !r.Success {
			row["Status"] = r.Error
			rows = append(rows, row)
			continue
		}
		row["Status"] = "ok"
		row["Name"] = r.Snapshot.StudentName
		row["Today"] = windowCell(r.Snapshot.Today)
		row["Yesterday"] = windowCell(r.Snapshot.Yesterday)
		row["Day Before"] = windowCell(r.Snapshot.DayBefore)
		if r.Snapshot.OverallPercent != nil {
			row["Overall %"] = strconv.FormatFloat(*r.Snapshot.OverallPercent, 'f', 2, 64)
		}
		rows = append(rows, row)
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

func windowCell(w *models.WindowReport) string {
	if w == nil {
		return ""
	}
	return strings.TrimSpace(w.AttendedOverHeld)
}
