package application

import (
	"testing"

	"github.com/example/recruitment-portal/internal/persistence"
	"github.com/example/recruitment-portal/internal/persistence/sqlite"
	"github.com/example/recruitment-portal/internal/testfixtures"
)

func principalFor(user persistence.User) Principal {
	return Principal{UserID: user.ID, Role: user.Role, SessionID: "session"}
}

type portalFixture struct {
	storage   *sqlite.Storage
	clock     *testfixtures.Clock
	admin     Principal
	candidate Principal
	other     Principal
}

func newPortalFixture(t *testing.T) portalFixture {
	t.Helper()

	storage := testfixtures.NewSQLiteStorage(t)
	return portalFixture{
		storage:   storage,
		clock:     testfixtures.NewClock(testfixtures.ReferenceTime()),
		admin:     principalFor(testfixtures.CreateAdmin(t, storage)),
		candidate: principalFor(testfixtures.CreateCandidate(t, storage)),
		other:     principalFor(testfixtures.CreateCandidate(t, storage)),
	}
}
