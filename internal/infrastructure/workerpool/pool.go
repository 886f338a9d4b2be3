package workerpool

import (
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Pool bounds the number of concurrently running jobs. Go blocks while all
// workers are busy.
type Pool struct {
	pool *ants.Pool
	wg   sync.WaitGroup
}

func New(size int) (*Pool, error) {
	if size <= 0 {
		size = 1
	}
	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	return &Pool{pool: pool}, nil
}

func (p *Pool) Go(job func()) error {
	p.wg.Add(1)
	err := p.pool.Submit(func() {
		defer p.wg.Done()
		job()
	})
	if err != nil {
		p.wg.Done()
		return fmt.Errorf("submit job: %w", err)
	}
	return nil
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

func (p *Pool) Running() int {
	return p.pool.Running()
}

func (p *Pool) Release() {
	p.pool.Release()
}
