package repository

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrTenantMismatch indicates the record exists but belongs to a different tenant.
	ErrTenantMismatch = errors.New("repository: tenant mismatch")
)
