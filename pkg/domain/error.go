package domain

import "github.com/m-mizutani/goerr/v2"

var (
	ErrConfiguration   = goerr.New("configuration error")
	ErrPrecondition    = goerr.New("precondition failed")
	ErrExecution       = goerr.New("script execution failed")
	ErrAmbiguousScript = goerr.New("ambiguous action script")
	ErrExternalTool    = goerr.New("azure cli command failed")
)
