package service

import "errors"

var (
	// ErrEmptyTitle rejects task input without a title. Callers recover
	// locally; the error never reaches the store.
	ErrEmptyTitle = errors.New("title must not be empty")

	// ErrPermissionDenied reports that the alarm facility refused exact
	// scheduling. The task itself is persisted; the caller should point
	// the user at a remediation path instead of silently downgrading.
	ErrPermissionDenied = errors.New("exact alarm scheduling not permitted")
)
