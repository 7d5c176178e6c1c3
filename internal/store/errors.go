package store

import (
	"errors"
	"fmt"
)

// ErrInit reports that the table could not be created or upgraded.
var ErrInit = errors.New("store init failed")

// ErrUnavailable reports that a database handle could not be acquired.
var ErrUnavailable = errors.New("store unavailable")

// ErrWrite reports an insert, update or delete the database rejected.
var ErrWrite = errors.New("store write failed")

// ErrClosed indicates an operation was attempted on a closed Store.
var ErrClosed = fmt.Errorf("%w: store closed", ErrUnavailable)
