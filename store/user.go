package store

type UserRole string

const (
	UserRoleAdmin UserRole = "ADMIN"
	UserRoleUser  UserRole = "USER"
)

type User struct {
	ID           int32
	Username     string
	PasswordHash string
	Role         UserRole
	CreatedTs    int64
}

type FindUser struct {
	ID       *int32
	Username *string
}
