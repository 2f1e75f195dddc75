// Package loader builds a model.Schema either by parsing a mysqldump-style
// SQL file or by introspecting a running MySQL server, so the differ core
// never has to know where a schema came from.
package loader

import "errors"

// ErrConnection wraps a failure to reach or authenticate against a MySQL
// server during live introspection.
var ErrConnection = errors.New("loader: connection failed")

// ErrParse wraps a failure to make sense of a dump file or an unexpected
// SHOW CREATE result during introspection.
var ErrParse = errors.New("loader: parse failed")
