package port

import "context"

// ArtifactSink stores extraction audit artifacts by name.
type ArtifactSink interface {
	Save(ctx context.Context, name string, content []byte) error
	Download(ctx context.Context, name string) ([]byte, error)
}
