package db

type Class struct {
	ID          int64
	CourseCode  string
	CourseName  string
	StartTime   int64
	EndTime     int64
	Location    string
	Status      string
	LastUpdated int64
}

type ScheduleEntry struct {
	ID        int64
	Title     string
	Category  string
	Priority  string
	StartTime int64
	EndTime   int64
	Location  string
}

type SyncRun struct {
	ID       string
	Started  int64
	Finished int64
	Records  int64
	Source   string
	Error    string
}
