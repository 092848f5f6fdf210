package pricemodel

import (
	"sync"
	"sync/atomic"

	"github.com/rotisserie/eris"
)

type loaded struct {
	pipe *Pipeline
	err  error
}

var (
	defaultOnce sync.Once
	defaultLoad atomic.Pointer[loaded]
)

// Init loads the process-wide pipeline from path. Only the first call loads;
// later calls return the first result regardless of path.
func Init(path string) (*Pipeline, error) {
	defaultOnce.Do(func() {
		p, err := Load(path)
		defaultLoad.Store(&loaded{pipe: p, err: err})
	})
	return Default()
}

// Default returns the pipeline loaded by Init. It is safe to call from any
// goroutine, including while Init is still loading.
func Default() (*Pipeline, error) {
	l := defaultLoad.Load()
	if l == nil {
		return nil, eris.New("pricemodel: Init has not been called")
	}
	return l.pipe, l.err
}
