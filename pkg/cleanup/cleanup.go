package cleanup

import (
	"sync"

	"go.uber.org/zap"
)

type Job struct {
	Name string
	F    func() error
}

var (
	mu   sync.Mutex
	jobs []*Job
)

func Register(j *Job) {
	mu.Lock()
	defer mu.Unlock()
	jobs = append(jobs, j)
}

// CleanUp runs registered jobs in reverse registration order, so resources
// are released before the ones they depend on.
func CleanUp(logger *zap.Logger) {
	mu.Lock()
	pending := jobs
	jobs = nil
	mu.Unlock()
	for i := len(pending) - 1; i >= 0; i-- {
		j := pending[i]
		if err := j.F(); err != nil {
			logger.Error("cleanup job failed", zap.String("job", j.Name), zap.Error(err))
			continue
		}
		logger.Info("cleanup job finished", zap.String("job", j.Name))
	}
}
