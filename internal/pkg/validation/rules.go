package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Validation rule patterns
var (
	// Department codes are short uppercase alphanumerics such as CSE or ECE2
	DepartmentCodePattern = `^[A-Z][A-Z0-9]{1,15}$`

	// Roll numbers are alphanumeric with optional dashes or slashes
	RollNumberPattern = `^[A-Za-z0-9][A-Za-z0-9/\-]{2,31}$`
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	DepartmentCode *regexp.Regexp
	RollNumber     *regexp.Regexp
}{
	DepartmentCode: regexp.MustCompile(DepartmentCodePattern),
	RollNumber:     regexp.MustCompile(RollNumberPattern),
}

// Tag names usable in binding struct tags
const (
	TagDepartmentCode = "deptcode"
	TagRollNumber     = "rollnumber"
)

// IsDepartmentCode reports whether code is a valid department code
func IsDepartmentCode(code string) bool {
	return CompiledPatterns.DepartmentCode.MatchString(strings.TrimSpace(code))
}

// IsRollNumber reports whether roll is a valid roll number
func IsRollNumber(roll string) bool {
	return CompiledPatterns.RollNumber.MatchString(strings.TrimSpace(roll))
}

// RegisterRules adds the custom tags to v.
func RegisterRules(v *validator.Validate) error {
	rules := map[string]validator.Func{
		TagDepartmentCode: func(fl validator.FieldLevel) bool {
			return IsDepartmentCode(fl.Field().String())
		},
		TagRollNumber: func(fl validator.FieldLevel) bool {
			return IsRollNumber(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register validation %s: %w", tag, err)
		}
	}
	return nil
}

// RegisterWithGin installs the custom tags on gin's binding validator
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return RegisterRules(v)
}
