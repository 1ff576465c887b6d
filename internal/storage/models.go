package storage

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID       uuid.UUID
	Username string
	Email    string
	Password string
}

type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

type Upload struct {
	ID         uuid.UUID
	Filename   string
	Filepath   string
	Comment    string
	UploadDate time.Time
}
