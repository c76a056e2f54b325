package dto

// DashboardResponse holds role-scoped counters
type DashboardResponse struct {
	ApplicationsByStatus map[string]int64 `json:"applicationsByStatus"`
	ActiveJobs           int64            `json:"activeJobs"`
	PendingCompanies     int64            `json:"pendingCompanies,omitempty"`
	PlacedStudents       int64            `json:"placedStudents,omitempty"`
	TotalStudents        int64            `json:"totalStudents,omitempty"`
	UpcomingInterviews   int64            `json:"upcomingInterviews"`
}
