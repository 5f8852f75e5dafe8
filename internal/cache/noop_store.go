package cache

import "context"

// NoopStore always misses and drops writes; every request renders fresh.
type NoopStore struct{}

func NewNoopStore() *NoopStore {
	return &NoopStore{}
}

func (*NoopStore) Get(context.Context, string) (Entry, bool, error) {
	return Entry{}, false, nil
}

func (*NoopStore) Put(context.Context, string, Entry) error {
	return nil
}

func (*NoopStore) Close(context.Context) error {
	return nil
}
