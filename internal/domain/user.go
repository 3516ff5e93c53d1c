package domain

import "time"

// User is an account that can log in and act under a workflow role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor returns the actor descriptor used by the lifecycle engine.
func (u *User) Actor() Actor {
	return Actor{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
