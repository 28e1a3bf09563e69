package memory

import (
	"testing"

	"github.com/parleybot/parley/pkg/ports/tests"
)

func TestStore_Contract(t *testing.T) {
	tests.RunSessionStoreContract(t, NewStore())
}
