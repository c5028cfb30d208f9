package util

const (
	DateFormat  = "2006-01-02"
	MonthFormat = "2006-01"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
)

// context keys set by middleware
const (
	ContextUserKey      = "user"
	ContextRequestIDKey = "requestID"
)
