package utils

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const (
	TASK_CHAN_SIZE = 100
)

type WorkerFunction = func(t *tomb.Tomb, task any) error
type WorkerPool struct {
	n     int      // number of workers
	tasks chan any // pending tasks
}

func NewWorkerPool(size uint) WorkerPool {
	return WorkerPool{
		n:     int(size),
		tasks: make(chan any, TASK_CHAN_SIZE),
	}
}

// Setup starts the workers under t. Workers stop once t is dying.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	for id := 0; id < pool.n; id++ {
		id := id
		t.Go(func() error {
			return pool.worker(t, id, work)
		})
	}
}

// AddTask queues a task for the next free worker. It returns false if t died
// before the task could be queued.
func (pool *WorkerPool) AddTask(t *tomb.Tomb, task any) bool {
	select {
	case <-t.Dying():
		return false
	default:
	}

	select {
	case <-t.Dying():
		return false
	case pool.tasks <- task:
		return true
	}
}

// Workers wait on tasks in the task pool and action them. An error from work
// is fatal to the whole tomb.
func (pool *WorkerPool) worker(t *tomb.Tomb, id int, work WorkerFunction) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Int("id", id).Msg("worker exiting")
				return err
			}
		}
	}
}
