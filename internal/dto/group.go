package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	rollNumberRe = regexp.MustCompile(`^[A-Z0-9]{10}$`)
	groupNameRe  = regexp.MustCompile(`^[a-zA-Z0-9\s_-]+$`)
)

// RegisterValidators wires the custom format validators into gin's binding
// engine. Call once at startup before routes are served.
func RegisterValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("rollnumber", func(fl validator.FieldLevel) bool {
		return rollNumberRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("groupname", func(fl validator.FieldLevel) bool {
		return groupNameRe.MatchString(fl.Field().String())
	})
}

// ValidRollNumber reports whether s is a well-formed roll number.
func ValidRollNumber(s string) bool {
	return rollNumberRe.MatchString(s)
}

// ValidGroupName reports whether s is a well-formed group name.
func ValidGroupName(s string) bool {
	return len(s) >= 1 && len(s) <= 50 && groupNameRe.MatchString(s)
}

// GroupRequest is the create/update payload for a group.
type GroupRequest struct {
	Name        string   `json:"name" binding:"required,min=1,max=50,groupname"`
	RollNumbers []string `json:"rollNumbers" binding:"required,min=1,max=20,dive,rollnumber"`
	Campus      string   `json:"campus" binding:"omitempty,alphanum,uppercase"`
}
