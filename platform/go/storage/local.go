package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// LocalPublisher writes objects beneath a root directory. Writes go through a temp
// file and a rename so readers never observe a partial object.
type LocalPublisher struct {
	root   string
	prefix string
}

func NewLocalPublisher(root, prefix string) *LocalPublisher {
	return &LocalPublisher{root: root, prefix: prefix}
}

func (p *LocalPublisher) Publish(ctx context.Context, obj Object) (ObjectLocation, error) {
	if err := ctx.Err(); err != nil {
		return ObjectLocation{}, err
	}
	if p.root == "" {
		return ObjectLocation{}, fmt.Errorf("local publisher root directory is required")
	}

	key, err := joinKey(p.prefix, obj.Key)
	if err != nil {
		return ObjectLocation{}, err
	}
	target := filepath.Join(p.root, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return ObjectLocation{}, fmt.Errorf("create directory for %s: %w", target, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".publish-*")
	if err != nil {
		return ObjectLocation{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(obj.Data); err != nil {
		_ = tmp.Close()
		return ObjectLocation{}, fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return ObjectLocation{}, fmt.Errorf("close %s: %w", target, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return ObjectLocation{}, fmt.Errorf("chmod %s: %w", target, err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		return ObjectLocation{}, fmt.Errorf("rename into %s: %w", target, err)
	}
	return ObjectLocation{FullPath: target}, nil
}

var _ Publisher = (*LocalPublisher)(nil)
