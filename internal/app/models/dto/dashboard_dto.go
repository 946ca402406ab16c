package dto

// DepartmentStudentCount is a per-department student tally
type DepartmentStudentCount struct {
	Department string `json:"department"`
	Count      int64  `json:"count"`
}

// SystemStats aggregates platform-wide figures for the system admin
type SystemStats struct {
	UserRoleCounts     map[string]int64         `json:"userRoleCounts"`
	TotalUsers         int64                    `json:"totalUsers"`
	OrganisationCount  int64                    `json:"organisationCount"`
	StudentCountByDept []DepartmentStudentCount `json:"studentCountsByDept"`
	TotalStudents      int64                    `json:"totalStudents"`
	AttendanceTrend    []int                    `json:"attendanceTrend"`
	AverageAttendance  int                      `json:"averageAttendance"`
}

// OrganisationStats aggregates figures scoped to one organisation
type OrganisationStats struct {
	TotalDepartments   int64                    `json:"totalDepartments"`
	TotalFaculty       int64                    `json:"totalFaculty"`
	TotalStudents      int64                    `json:"totalStudents"`
	StudentCountByDept []DepartmentStudentCount `json:"studentCountsByDept"`
}

// DepartmentStats aggregates figures scoped to one department
type DepartmentStats struct {
	TotalSubjects     int64 `json:"totalSubjects"`
	TotalStudents     int64 `json:"totalStudents"`
	TotalLectures     int64 `json:"totalLectures"`
	AverageAttendance int   `json:"averageAttendance"`
	AttendanceTrend   []int `json:"attendanceTrend"`
}
