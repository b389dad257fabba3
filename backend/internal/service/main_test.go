package service

import (
	"testing"

	"go.uber.org/goleak"
)

// Narrative loads fan out over errgroup goroutines; none may outlive a call.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
