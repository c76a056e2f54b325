package models

import "time"

// StudentProfile extends a student user with academic and placement data
type StudentProfile struct {
	ID                int64                  `json:"id" db:"id"`
	UserID            int64                  `json:"userId" db:"user_id"`
	RollNumber        string                 `json:"rollNumber" db:"roll_number"`
	DepartmentID      int64                  `json:"departmentId" db:"department_id"`
	Degree            string                 `json:"degree" db:"degree" example:"BTech"`
	BatchYear         int                    `json:"batchYear" db:"batch_year" example:"2025"`
	CGPA              float64                `json:"cgpa" db:"cgpa" example:"7.2"`
	TenthPercentage   *float64               `json:"tenthPercentage,omitempty" db:"tenth_percentage"`
	TwelfthPercentage *float64               `json:"twelfthPercentage,omitempty" db:"twelfth_percentage"`
	ActiveBacklogs    int                    `json:"activeBacklogs" db:"active_backlogs"`
	PlacementStatus   PlacementStatus        `json:"placementStatus" db:"placement_status"`
	ResumeURL         *string                `json:"resumeUrl,omitempty" db:"resume_url"`
	IsVerified        bool                   `json:"isVerified" db:"is_verified"`
	VerifiedBy        *int64                 `json:"verifiedBy,omitempty" db:"verified_by"`
	VerifiedAt        *time.Time             `json:"verifiedAt,omitempty" db:"verified_at"`
	CreatedAt         time.Time              `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time              `json:"updatedAt" db:"updated_at"`
	User              *User                  `json:"user,omitempty"`
	DepartmentName    string                 `json:"departmentName,omitempty"`
	Skills            []StudentSkill         `json:"skills,omitempty"`
	Projects          []StudentProject       `json:"projects,omitempty"`
	Certifications    []StudentCertification `json:"certifications,omitempty"`
	Internships       []StudentInternship    `json:"internships,omitempty"`
}

// StudentSkill is a skill listed on a student's profile
type StudentSkill struct {
	ID          int64  `json:"id" db:"id"`
	StudentID   int64  `json:"studentId" db:"student_id"`
	Name        string `json:"name" db:"name"`
	Proficiency string `json:"proficiency" db:"proficiency"`
}

// StudentProject is a project listed on a student's profile
type StudentProject struct {
	ID          int64   `json:"id" db:"id"`
	StudentID   int64   `json:"studentId" db:"student_id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	URL         *string `json:"url,omitempty" db:"url"`
}

// StudentCertification is a certification listed on a student's profile
type StudentCertification struct {
	ID        int64      `json:"id" db:"id"`
	StudentID int64      `json:"studentId" db:"student_id"`
	Name      string     `json:"name" db:"name"`
	Issuer    string     `json:"issuer" db:"issuer"`
	IssuedOn  *time.Time `json:"issuedOn,omitempty" db:"issued_on"`
	URL       *string    `json:"url,omitempty" db:"url"`
}

// StudentInternship is a past internship listed on a student's profile
type StudentInternship struct {
	ID          int64      `json:"id" db:"id"`
	StudentID   int64      `json:"studentId" db:"student_id"`
	Company     string     `json:"company" db:"company"`
	Role        string     `json:"role" db:"role"`
	StartDate   time.Time  `json:"startDate" db:"start_date"`
	EndDate     *time.Time `json:"endDate,omitempty" db:"end_date"`
	Description string     `json:"description" db:"description"`
}
