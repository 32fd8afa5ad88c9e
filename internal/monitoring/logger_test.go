package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLogger(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})
	Logf("solver found %d images", 4)
	if got != "solver found 4 images" {
		t.Errorf("unexpected log output: %q", got)
	}

	// nil restores a no-op logger without panicking.
	SetLogger(nil)
	Logf("dropped %s", "message")
}
