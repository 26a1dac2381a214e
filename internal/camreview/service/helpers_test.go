package service_test

import (
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cwhuang-tw/camreview/internal/camreview/cache"
	memnotify "github.com/cwhuang-tw/camreview/internal/camreview/notify/memory"
	"github.com/cwhuang-tw/camreview/internal/camreview/service"
	memstore "github.com/cwhuang-tw/camreview/internal/camreview/store/memory"
)

// Rostered identities used across the workflow tests.
const (
	approver1 = "alice@example.com"
	approver2 = "bob@example.com"
	activator = "carol@example.com"
	submitter = "dave@example.com"
	outsider  = "mallory@example.com"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// fakeClock drives the TTL caches in tests.
type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

// testEnv wires the whole service layer against in-memory doubles.
type testEnv struct {
	clock     *fakeClock
	requests  *memstore.RequestStore
	roster    *memstore.RosterStore
	directory *memstore.DirectoryStore
	notifier  *memnotify.Notifier

	roles    *service.RoleResolver
	names    *service.DirectoryResolver
	workflow *service.Workflow
	queries  *service.QueryService
	legacy   *service.LegacyService
}

func newTestEnv() *testEnv {
	logger := testLogger()

	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}

	e := &testEnv{
		clock:     clock,
		requests:  memstore.NewRequestStore(),
		roster:    memstore.NewRosterStore(),
		directory: memstore.NewDirectoryStore(),
		notifier:  memnotify.New(),
	}

	e.roster.SetMembers("approver1", approver1)
	e.roster.SetMembers("approver2", approver2)
	e.roster.SetMembers("activator", activator)

	e.roles = service.NewRoleResolver(e.roster, cache.New[[]string](clock.Now), logger)
	e.names = service.NewDirectoryResolver(e.directory, cache.New[map[string]string](clock.Now), logger)
	e.workflow = service.NewWorkflow(e.requests, e.roles, e.names, e.notifier, logger)
	e.queries = service.NewQueryService(e.requests, e.roles, e.names, time.UTC)
	e.legacy = service.NewLegacyService(e.requests, e.roles, logger, time.UTC)

	return e
}
