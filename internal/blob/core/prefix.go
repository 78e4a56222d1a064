package core

import (
	"context"
	"io"
	"path"
	"strings"
)

// prefixed scopes every key of an underlying store beneath a fixed prefix.
type prefixed struct {
	Store
	prefix string
}

// WithPrefix returns a Store whose keys live under prefix in s. Keys passed in
// and returned are relative to the prefix. An empty prefix returns s unchanged.
func WithPrefix(s Store, prefix string) Store {
	prefix = strings.Trim(path.Clean("/"+strings.TrimSpace(prefix)), "/")
	if prefix == "" || prefix == "." {
		return s
	}
	return &prefixed{Store: s, prefix: prefix + "/"}
}

func (p *prefixed) Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	info, err := p.Store.Put(ctx, p.prefix+key, r, opts)
	return p.strip(info), err
}

func (p *prefixed) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	info, rc, err := p.Store.Get(ctx, p.prefix+key)
	return p.strip(info), rc, err
}

func (p *prefixed) Head(ctx context.Context, key string) (Info, error) {
	info, err := p.Store.Head(ctx, p.prefix+key)
	return p.strip(info), err
}

func (p *prefixed) Delete(ctx context.Context, key string) (bool, error) {
	return p.Store.Delete(ctx, p.prefix+key)
}

func (p *prefixed) List(ctx context.Context, prefix string) ([]Info, error) {
	infos, err := p.Store.List(ctx, p.prefix+prefix)
	if err != nil {
		return nil, err
	}
	for i := range infos {
		infos[i] = p.strip(infos[i])
	}
	return infos, nil
}

func (p *prefixed) PresignURL(ctx context.Context, key string, opts SignedURLOptions) (string, error) {
	return p.Store.PresignURL(ctx, p.prefix+key, opts)
}

func (p *prefixed) strip(info Info) Info {
	info.Key = strings.TrimPrefix(info.Key, p.prefix)
	return info
}
