package scan

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cuongbtq/fieldservice-be/internal/domain"
	"github.com/cuongbtq/fieldservice-be/internal/model"
	"github.com/cuongbtq/fieldservice-be/internal/notify"
)

type fakeJobs struct {
	candidates []model.Job
	listErr    error
	gotCutoff  time.Time
	// status per job id; MarkJobOverdue applies the same guard as the SQL update
	status  map[string]string
	markErr map[string]error
}

func (f *fakeJobs) ListOverdueCandidates(_ context.Context, cutoff time.Time, organizationID string) ([]model.Job, error) {
	f.gotCutoff = cutoff
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Job
	for _, j := range f.candidates {
		if organizationID != "" && j.OrganizationID != organizationID {
			continue
		}
		if !j.ScheduledStart.Before(cutoff) || domain.HasRole(f.status[j.ID], domain.InactiveJobStatuses) {
			continue
		}
		out = append(out, j)
	}
	return out, nil
}

func (f *fakeJobs) MarkJobOverdue(_ context.Context, _ string, jobID string) (bool, error) {
	if err := f.markErr[jobID]; err != nil {
		return false, err
	}
	if domain.HasRole(f.status[jobID], domain.InactiveJobStatuses) {
		return false, nil
	}
	f.status[jobID] = domain.JobStatusOverdue
	return true, nil
}

type fakeRecipients struct {
	byOrg map[string][]string
	err   error
	calls int
}

func (f *fakeRecipients) Managers(_ context.Context, organizationID string) ([]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.byOrg[organizationID], nil
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Emit(_ context.Context, ev notify.Event) notify.EmitResult {
	r.events = append(r.events, ev)
	return notify.EmitResult{Created: len(ev.Recipients)}
}

func (r *recordingNotifier) rows() int {
	n := 0
	for _, ev := range r.events {
		n += len(ev.Recipients)
	}
	return n
}

type fakeContracts struct {
	candidates []model.Contract
	status     map[string]string
	markErr    error
}

func (f *fakeContracts) ListContractCandidates(context.Context, string) ([]model.Contract, error) {
	return f.candidates, nil
}

func (f *fakeContracts) MarkContractExpired(_ context.Context, _, id string, _ time.Time) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	s := f.status[id]
	if s != domain.ContractStatusActive && s != domain.ContractStatusExpiringSoon {
		return false, nil
	}
	f.status[id] = domain.ContractStatusExpired
	return true, nil
}

func (f *fakeContracts) MarkContractExpiring(_ context.Context, _, id string, _ time.Time) (bool, error) {
	if f.markErr != nil {
		return false, f.markErr
	}
	if f.status[id] != domain.ContractStatusActive {
		return false, nil
	}
	f.status[id] = domain.ContractStatusExpiringSoon
	return true, nil
}

type memLocker struct {
	mu   sync.Mutex
	held map[string]bool
	err  error
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]bool)}
}

func (l *memLocker) Acquire(_ context.Context, name string, _ time.Duration) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[name] {
		return nil, domain.ErrLockHeld
	}
	l.held[name] = true
	return func() {
		l.mu.Lock()
		delete(l.held, name)
		l.mu.Unlock()
	}, nil
}

var errBoom = errors.New("boom")
