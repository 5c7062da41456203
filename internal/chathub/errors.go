package chathub

import "errors"

var (
	// ErrNotAuthorized повертається, коли Guard або перевірка ролі відхиляє
	// операцію. З'єднання при цьому залишається відкритим.
	ErrNotAuthorized = errors.New("not authorized")
	// ErrClientInitiator — клієнти не можуть створювати приватні сесії.
	ErrClientInitiator = errors.New("clients cannot create private sessions")
	// ErrEmptyInvite — спроба стартувати сесію без жодного запрошеного.
	ErrEmptyInvite = errors.New("private session requires at least one invited user")
	// ErrNotPrivateSession — спроба закрити звичайну кімнату як сесію.
	ErrNotPrivateSession = errors.New("not a private session")
	// ErrEmptyMessage — повідомлення без контенту і без вкладення.
	ErrEmptyMessage = errors.New("message must have content or an attachment")
	// ErrMessageTooLong — контент перевищує ліміт довжини.
	ErrMessageTooLong = errors.New("message content too long")
	// ErrMessageNotFound — повідомлення відсутнє.
	ErrMessageNotFound = errors.New("message not found")
)
