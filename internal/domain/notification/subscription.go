package notification

import "sync"

// Subscription is the handle returned by Subscribe. Close detaches the subscriber
// and may be called any number of times.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps the cancel function run on the first Close.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}
