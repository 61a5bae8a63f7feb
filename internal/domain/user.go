package domain

import "time"

// UserRole represents the organizational role of a user.
type UserRole string

const (
	UserRoleWorker UserRole = "WORKER"
	UserRoleLeader UserRole = "LEADER"
	UserRoleAdmin  UserRole = "ADMIN"
)

// User represents a person working on the farm.
type User struct {
	ID         string
	FirstName  string
	LastName   string
	Role       UserRole
	Status     string
	HiredAt    *time.Time
	Efficiency float64
}

// FullName returns "first last".
func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	default:
		return u.FirstName + " " + u.LastName
	}
}

// Team represents a group of workers led by a leader.
type Team struct {
	ID         string
	Name       string
	LeaderID   *string
	CreatedAt  time.Time
	Efficiency float64
}
