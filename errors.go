package main

import (
	"errors"
	"fmt"
)

var (
	ErrRootNotFound   = errors.New("documentation root not found")
	ErrRootNotDir     = errors.New("documentation root is not a directory")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNotText        = errors.New("file is not valid UTF-8 text")
	ErrChangesPending = errors.New("files need filename formatting")
)

// FileError records the file and operation that failed.
type FileError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
