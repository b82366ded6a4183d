package scheduler

import "errors"

// ErrLoad возвращается, когда задача не смогла получить список бронирований
var ErrLoad = errors.New("scheduler: failed to load work items")
