// Package guard switches the process into test mode when imported, so
// binaries under test skip their network side effects.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PROCUREFLOW_TEST_MODE") == "" {
			_ = os.Setenv("PROCUREFLOW_TEST_MODE", "1")
		}
	})
}
