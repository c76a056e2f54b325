package validation

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatterns(t *testing.T) {
	assert.True(t, IsDepartmentCode("CSE"))
	assert.True(t, IsDepartmentCode("ECE2"))
	assert.False(t, IsDepartmentCode("cse"))
	assert.False(t, IsDepartmentCode("C"))
	assert.False(t, IsDepartmentCode("CS-E"))

	assert.True(t, IsRollNumber("CS21001"))
	assert.True(t, IsRollNumber("21/CS/001"))
	assert.False(t, IsRollNumber("ab"))
	assert.False(t, IsRollNumber("-CS21"))
}

func TestRegisterRules(t *testing.T) {
	v := validator.New()
	require.NoError(t, RegisterRules(v))

	type req struct {
		Code string `validate:"deptcode"`
		Roll string `validate:"rollnumber"`
	}
	assert.NoError(t, v.Struct(req{Code: "MECH", Roll: "ME22014"}))
	assert.Error(t, v.Struct(req{Code: "mech", Roll: "ME22014"}))
	assert.Error(t, v.Struct(req{Code: "MECH", Roll: "!"}))
}
