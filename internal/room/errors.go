package room

import "errors"

var (
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotExist      = errors.New("room not exist")
	ErrRoomIDIsEmpty     = errors.New("room id is empty")
	ErrAlreadyInRoom     = errors.New("connection already joined a room")
	ErrNotAMember        = errors.New("connection is not a room member")
)
