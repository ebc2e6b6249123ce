package prompt

import (
	"context"
	"sync"
)

// Scripted is an adapter that replays canned answers per parameter, for
// headless runs and tests. Parameters without a remaining answer are
// declined.
type Scripted struct {
	mu      sync.Mutex
	answers map[string][]Answer
	errs    map[string]error
	asked   []*Request
}

// NewScripted creates a scripted adapter from answers keyed by parameter
func NewScripted(answers map[string][]string) *Scripted {
	s := &Scripted{
		answers: make(map[string][]Answer),
		errs:    make(map[string]error),
	}
	for name, values := range answers {
		for _, v := range values {
			s.answers[name] = append(s.answers[name], Answer{Value: v})
		}
	}
	return s
}

// Decline queues an explicit decline for a parameter
func (s *Scripted) Decline(name string) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[name] = append(s.answers[name], Answer{Declined: true})
	return s
}

// Fail makes every prompt for a parameter return err
func (s *Scripted) Fail(name string, err error) *Scripted {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[name] = err
	return s
}

// Prompt implements Adapter
func (s *Scripted) Prompt(ctx context.Context, req *Request) (Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *req
	s.asked = append(s.asked, &copied)

	if err := ctx.Err(); err != nil {
		return Answer{}, err
	}
	if err, ok := s.errs[req.Parameter]; ok {
		return Answer{}, err
	}

	queue := s.answers[req.Parameter]
	if len(queue) == 0 {
		return Answer{Declined: true}, nil
	}
	s.answers[req.Parameter] = queue[1:]
	return queue[0], nil
}

// Asked returns the requests seen so far, in order
func (s *Scripted) Asked() []*Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Request, len(s.asked))
	copy(out, s.asked)
	return out
}

// AskedNames returns the parameter names prompted so far, in order
func (s *Scripted) AskedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.asked))
	for i, r := range s.asked {
		out[i] = r.Parameter
	}
	return out
}
