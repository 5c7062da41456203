package storage

import "errors"

var (
	// ErrRoomNotFound повертається, коли кімната відсутня в БД.
	ErrRoomNotFound = errors.New("room not found")
	// ErrUserNotFound повертається, коли користувач відсутній в БД.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateRoomName повертається при конфлікті унікальної назви кімнати.
	ErrDuplicateRoomName = errors.New("room name already exists")
	// ErrClientInPrivateRoom повертається, якщо до приватної кімнати
	// намагаються додати користувача з роллю CLIENT.
	ErrClientInPrivateRoom = errors.New("clients cannot be members of private rooms")
)
