package locker

import "errors"

var (
	// ErrLockTimeout возвращается, когда блокировку не удалось взять до отмены контекста
	ErrLockTimeout = errors.New("locker: lock acquisition timed out")

	// ErrLockBackend возвращается при ошибке хранилища блокировок
	ErrLockBackend = errors.New("locker: backend error")
)
