package database

import (
	"context"
)

var (
	_ RunStore    = (*RunRepository)(nil)
	_ SourceStore = (*SourceRepository)(nil)
	_ PostStore   = (*PostRepository)(nil)
)

type RunStore interface {
	CreateRun(ctx context.Context, run Run) error
	GetLatestRun(ctx context.Context) (*Run, error)
	GetRunCount(ctx context.Context) (int, error)
}

type SourceStore interface {
	InsertSourceRun(ctx context.Context, sourceRun SourceRun) error
	GetLatestSourceRuns(ctx context.Context) ([]SourceRun, error)
	GetSourceHistory(ctx context.Context, source string, limit int) ([]SourceRun, error)
}

type PostStore interface {
	UpsertPost(ctx context.Context, post Post) error
	GetPosts(ctx context.Context, source string, limit int) ([]Post, error)
	GetPostCount(ctx context.Context) (int, error)
}
