package wizard

import "errors"

var (
	errClusterNameRequired = errors.New("cluster name is required")
	errClusterNameInvalid  = errors.New("must be 1-32 lowercase alphanumeric characters or hyphens")
)
