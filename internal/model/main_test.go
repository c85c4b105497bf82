package model

import (
	"testing"

	"go.uber.org/goleak"
)

// Forest fitting and KNN prediction fan out goroutines; none may outlive
// their call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
