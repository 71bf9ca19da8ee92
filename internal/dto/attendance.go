package dto

// AttendanceQuery carries optional query parameters for attendance reads.
type AttendanceQuery struct {
	Campus string `form:"campus" binding:"omitempty,alphanum,uppercase"`
}

// Export formats supported by the group report endpoint.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportQuery selects the report format.
type ExportQuery struct {
	Format string `form:"format" binding:"omitempty,oneof=csv pdf"`
}
