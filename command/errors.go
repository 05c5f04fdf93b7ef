package command

import "github.com/pkg/errors"

var (
	ErrDialectNotSupported = errors.New("dialect not supported")
	ErrEmptyCommand        = errors.New("command is empty")
)
