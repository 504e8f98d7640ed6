package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-leave-go/internal/domain/leave"
)

type leaveRequestRepository struct {
	mu       sync.RWMutex
	requests map[string]leave.LeaveRequest
}

func NewLeaveRequestRepository() leave.RequestRepository {
	return &leaveRequestRepository{requests: make(map[string]leave.LeaveRequest)}
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, request leave.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests[request.ID] = request
	return nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string) (leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, ok := r.requests[id]
	if !ok {
		return leave.LeaveRequest{}, leave.ErrLeaveRequestNotFound
	}
	return req, nil
}

// Update implements leave.RequestRepository.
func (r *leaveRequestRepository) Update(ctx context.Context, request leave.LeaveRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.requests[request.ID]
	if !ok {
		return leave.ErrLeaveRequestNotFound
	}
	// applied_on never changes after submission
	request.AppliedOn = prev.AppliedOn
	r.requests[request.ID] = request
	return nil
}

// List implements leave.RequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.RequestFilter) ([]leave.LeaveRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]leave.LeaveRequest, 0)
	for _, req := range r.requests {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, req)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].AppliedOn.Equal(out[j].AppliedOn) {
			return out[i].ID > out[j].ID
		}
		return out[i].AppliedOn.After(out[j].AppliedOn)
	})
	return out, nil
}

// IsOnLeave implements leave.RequestRepository.
func (r *leaveRequestRepository) IsOnLeave(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.requests {
		if req.EmployeeID == employeeID && req.Status == leave.RequestStatusApproved && req.Covers(date) {
			return true, nil
		}
	}
	return false, nil
}
