package storage

import (
	"context"
	"time"
)

const newUser = `
INSERT INTO users (username, email, password)
VALUES ($1, $2, $3)
RETURNING id, username, email, password
`

type NewUserParams struct {
	Username string
	Email    string
	Password string
}

func (q *Queries) NewUser(ctx context.Context, arg NewUserParams) (User, error) {
	row := q.db.QueryRowContext(ctx, newUser, arg.Username, arg.Email, arg.Password)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	return u, err
}

const getUserByEmail = `
SELECT id, username, email, password FROM users
WHERE email = $1
`

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByEmail, email)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	return u, err
}

const getUserByUsername = `
SELECT id, username, email, password FROM users
WHERE username = $1
`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := q.db.QueryRowContext(ctx, getUserByUsername, username)
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password)
	return u, err
}

const newGroup = `
INSERT INTO groups (name, description)
VALUES ($1, $2)
RETURNING id, name, description, created_at
`

type NewGroupParams struct {
	Name        string
	Description string
}

func (q *Queries) NewGroup(ctx context.Context, arg NewGroupParams) (Group, error) {
	row := q.db.QueryRowContext(ctx, newGroup, arg.Name, arg.Description)
	var g Group
	err := row.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt)
	return g, err
}

const listGroups = `
SELECT id, name, description, created_at FROM groups
ORDER BY created_at
`

func (q *Queries) ListGroups(ctx context.Context) ([]Group, error) {
	rows, err := q.db.QueryContext(ctx, listGroups)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Group
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	return result, rows.Err()
}

const newUpload = `
INSERT INTO uploads (filename, filepath, comment, upload_date)
VALUES ($1, $2, $3, $4)
RETURNING id, filename, filepath, comment, upload_date
`

type NewUploadParams struct {
	Filename   string
	Filepath   string
	Comment    string
	UploadDate time.Time
}

func (q *Queries) NewUpload(ctx context.Context, arg NewUploadParams) (Upload, error) {
	row := q.db.QueryRowContext(ctx, newUpload, arg.Filename, arg.Filepath, arg.Comment, arg.UploadDate)
	var u Upload
	err := row.Scan(&u.ID, &u.Filename, &u.Filepath, &u.Comment, &u.UploadDate)
	return u, err
}

const listUploads = `
SELECT id, filename, filepath, comment, upload_date FROM uploads
ORDER BY upload_date DESC
`

func (q *Queries) ListUploads(ctx context.Context) ([]Upload, error) {
	rows, err := q.db.QueryContext(ctx, listUploads)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Upload
	for rows.Next() {
		var u Upload
		if err := rows.Scan(&u.ID, &u.Filename, &u.Filepath, &u.Comment, &u.UploadDate); err != nil {
			return nil, err
		}
		result = append(result, u)
	}
	return result, rows.Err()
}
