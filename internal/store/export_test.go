package store

// WithVersion exposes withVersion to store_test.
var WithVersion = withVersion

var DSN = dsn
