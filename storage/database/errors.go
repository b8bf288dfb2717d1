package database

import (
	"github.com/pkg/errors"

	"github.com/lilypad-dao/lilypad/core"
)

// database/sql does not export the error returned by a closed *sql.DB.
const closedMsg = "sql: database is closed"

// IsClosed reports whether err comes from a closed connection pool.
func IsClosed(err error) bool {
	return err != nil && errors.Cause(err).Error() == closedMsg
}

// Wrap annotates err with msg. Errors from a closed pool become shutdown errors:
// no later query can succeed, so the app must stop serving.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	if IsClosed(err) {
		return core.NewShutdownError(msg + ": " + err.Error())
	}
	return errors.Wrap(err, msg)
}
