package tools

import (
	"context"
	"sync"

	"seedfast/dataorch/internal/gateway"
)

type fakeGateway struct {
	mu        sync.Mutex
	result    any
	err       error
	executed  []string
	described []string
}

func (f *fakeGateway) Execute(_ context.Context, query string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.executed = append(f.executed, query)
	return f.result, f.err
}

func (f *fakeGateway) DescribeTable(_ context.Context, table string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.described = append(f.described, table)
	return f.result, f.err
}

func (f *fakeGateway) Dialect() gateway.Dialect {
	return gateway.Dialect{Name: "SurrealQL", Contains: "CONTAINS"}
}

func (f *fakeGateway) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.executed) + len(f.described)
}
