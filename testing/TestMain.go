// Package testing is blank-imported by test packages so the guard's
// init marks the process as a test run before any runtime code loads.
package testing

import (
	"os"
	stdtesting "testing"

	_ "github.com/meridian-hrm/meridian-hrm/internal/testing/guard"
)

func TestMain(m *stdtesting.M) {
	os.Exit(m.Run())
}
