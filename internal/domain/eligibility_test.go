package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }
func intp(v int) *int        { return &v }

func scenarioStudent() StudentEligibility {
	return StudentEligibility{CGPA: 7.2, ActiveBacklogs: 0, DepartmentID: 3, BatchYear: 2025, Degree: "BTech"}
}

func scenarioJob() JobCriteria {
	return JobCriteria{
		RequiredCGPA:        f64(7.0),
		AllowedBacklogs:     intp(0),
		EligibleDepartments: []int64{3, 5},
		EligibleBatches:     []int{2025},
		EligibleDegrees:     []string{"BTech", "MTech"},
	}
}

func TestIsEligible_Scenario(t *testing.T) {
	student := scenarioStudent()
	job := scenarioJob()
	assert.True(t, IsEligible(student, job))

	student.CGPA = 6.9
	assert.False(t, IsEligible(student, job))
	assert.Equal(t, []Criterion{CriterionCGPA}, EligibilityFailures(student, job))
}

func TestEligibilityFailures_EachCriterion(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*StudentEligibility)
		want   Criterion
	}{
		{"cgpa below", func(s *StudentEligibility) { s.CGPA = 6.99 }, CriterionCGPA},
		{"too many backlogs", func(s *StudentEligibility) { s.ActiveBacklogs = 1 }, CriterionBacklogs},
		{"other department", func(s *StudentEligibility) { s.DepartmentID = 4 }, CriterionDepartment},
		{"other batch", func(s *StudentEligibility) { s.BatchYear = 2024 }, CriterionBatch},
		{"other degree", func(s *StudentEligibility) { s.Degree = "BSc" }, CriterionDegree},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student := scenarioStudent()
			tt.modify(&student)
			assert.Equal(t, []Criterion{tt.want}, EligibilityFailures(student, scenarioJob()))
			assert.False(t, IsEligible(student, scenarioJob()))
		})
	}
}

func TestEligibility_BoundariesAreInclusive(t *testing.T) {
	student := scenarioStudent()
	student.CGPA = 7.0
	assert.True(t, IsEligible(student, scenarioJob()))

	job := scenarioJob()
	job.AllowedBacklogs = intp(2)
	student.ActiveBacklogs = 2
	assert.True(t, IsEligible(student, job))
}

func TestEligibility_NoConstraints(t *testing.T) {
	student := StudentEligibility{CGPA: 0, ActiveBacklogs: 12, DepartmentID: 99, BatchYear: 1990, Degree: "Diploma"}
	assert.True(t, IsEligible(student, JobCriteria{}))
}

func TestEligibility_NumericConstraintsIndependentOfSets(t *testing.T) {
	job := JobCriteria{RequiredCGPA: f64(8.0)}
	student := StudentEligibility{CGPA: 7.5, DepartmentID: 1, BatchYear: 2025, Degree: "BTech"}
	assert.Equal(t, []Criterion{CriterionCGPA}, EligibilityFailures(student, job))

	job = JobCriteria{AllowedBacklogs: intp(0)}
	student.ActiveBacklogs = 3
	assert.Equal(t, []Criterion{CriterionBacklogs}, EligibilityFailures(student, job))

	job = JobCriteria{EligibleDepartments: []int64{1}, EligibleBatches: []int{2025}, EligibleDegrees: []string{"BTech"}}
	student = StudentEligibility{CGPA: 0, ActiveBacklogs: 9, DepartmentID: 1, BatchYear: 2025, Degree: "BTech"}
	assert.True(t, IsEligible(student, job))
}

func TestEligibility_ZeroCGPAConstraintIsStillAConstraint(t *testing.T) {
	job := JobCriteria{AllowedBacklogs: intp(0)}
	assert.False(t, IsEligible(StudentEligibility{ActiveBacklogs: 1}, job))
	assert.True(t, IsEligible(StudentEligibility{ActiveBacklogs: 0}, job))
}

func TestEligibility_MultipleFailuresInOrder(t *testing.T) {
	student := StudentEligibility{CGPA: 5, ActiveBacklogs: 4, DepartmentID: 8, BatchYear: 2020, Degree: "MBA"}
	assert.Equal(t,
		[]Criterion{CriterionCGPA, CriterionBacklogs, CriterionDepartment, CriterionBatch, CriterionDegree},
		EligibilityFailures(student, scenarioJob()))
	assert.Equal(t, []string{"cgpa", "backlogs", "department", "batch", "degree"},
		CriteriaStrings(EligibilityFailures(student, scenarioJob())))
}

func TestEligibility_DegreeMatchIgnoresCase(t *testing.T) {
	student := scenarioStudent()
	student.Degree = " btech "
	assert.True(t, IsEligible(student, scenarioJob()))
}
