package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aretw0/scenery"
	"github.com/aretw0/scenery/pkg/adapters/file"
	"github.com/aretw0/scenery/pkg/adapters/redis"
	"github.com/aretw0/scenery/pkg/content"
	"github.com/aretw0/scenery/pkg/domain"
	"github.com/aretw0/scenery/pkg/manifest"
	"github.com/aretw0/scenery/pkg/media"
	"github.com/aretw0/scenery/pkg/persistence/middleware"
	"github.com/aretw0/scenery/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// ErrNoProject is returned when a directory has neither a script nor a
// compiled graph.
var ErrNoProject = errors.New("no scenery.yaml or bin/obj.bin found")

// Project resolves the layout of a scenery project directory.
type Project struct {
	opts   Options
	logger *slog.Logger
}

// NewProject creates a project rooted at opts.Dir.
func NewProject(opts Options, logger *slog.Logger) *Project {
	if opts.Dir == "" {
		opts.Dir = "."
	}
	return &Project{opts: opts, logger: logger}
}

// ScriptPath is the YAML script of the project.
func (p *Project) ScriptPath() string { return filepath.Join(p.opts.Dir, manifest.DefaultFile) }

// ResourceDir holds the media referenced by the script.
func (p *Project) ResourceDir() string { return filepath.Join(p.opts.Dir, "res") }

// SessionDir holds file-backed session state.
func (p *Project) SessionDir() string { return filepath.Join(p.opts.Dir, ".scenery", "sessions") }

// Graphs returns the store of compiled graphs. When a key is set the token
// is sealed with a key derived from it.
func (p *Project) Graphs() ports.GraphStore {
	var store ports.GraphStore = file.NewGraphStore(p.opts.Dir)
	if p.opts.Key == "" {
		return store
	}
	return middleware.Chain(store, middleware.NewPassphraseMiddleware(p.opts.Key))
}

// Factory builds the content factory with the configured media backend.
func (p *Project) Factory() *content.Factory {
	var mopts []media.Option
	if p.opts.FFmpeg != "" || p.opts.FFprobe != "" {
		mopts = append(mopts, media.WithBinaries(p.opts.FFmpeg, p.opts.FFprobe))
	}
	mopts = append(mopts, media.WithLogger(p.logger))

	var fopts []content.Option
	if p.opts.MaxRoundWidth > 0 {
		fopts = append(fopts, content.WithMaxRoundWidth(p.opts.MaxRoundWidth))
	}
	fopts = append(fopts, content.WithLogger(p.logger))
	return content.NewFactory(media.New(mopts...), fopts...)
}

// Compile builds the graph from the project script.
func (p *Project) Compile(ctx context.Context) (*domain.Graph, error) {
	m, err := manifest.ReadFile(p.ScriptPath())
	if err != nil {
		return nil, err
	}
	return manifest.NewCompiler(p.Factory(), p.ResourceDir()).Compile(ctx, m)
}

// LoadGraph compiles the script when present and falls back to the
// compiled graph in bin/.
func (p *Project) LoadGraph(ctx context.Context) (*domain.Graph, error) {
	if _, err := os.Stat(p.ScriptPath()); err == nil {
		p.logger.Debug("compiling script", "path", p.ScriptPath())
		return p.Compile(ctx)
	}

	g, err := p.Graphs().Load(ctx, file.DefaultGraphName)
	if errors.Is(err, domain.ErrGraphNotFound) {
		return nil, fmt.Errorf("%w in %s", ErrNoProject, p.opts.Dir)
	}
	return g, err
}

// Build compiles the script and stores the graph in bin/. It returns the
// written file.
func (p *Project) Build(ctx context.Context) (string, error) {
	g, err := p.Compile(ctx)
	if err != nil {
		return "", err
	}
	if err := p.Graphs().Save(ctx, file.DefaultGraphName, g); err != nil {
		return "", err
	}
	return file.NewGraphStore(p.opts.Dir).Path(file.DefaultGraphName), nil
}

// NewBot wires a bot over g with the configured state store. The returned
// closer releases the store.
func (p *Project) NewBot(g *domain.Graph, extra ...scenery.Option) (*scenery.Bot, func() error, error) {
	opts := []scenery.Option{
		scenery.WithName(filepath.Base(p.opts.Dir)),
		scenery.WithLogger(p.logger),
	}

	if p.opts.ButtonPolicy != "" {
		policy, err := domain.ParseButtonPolicy(p.opts.ButtonPolicy)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, scenery.WithButtonPolicy(policy))
	}

	closer := func() error { return nil }
	if p.opts.RedisURL != "" {
		ropts, err := backend.ParseURL(p.opts.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid redis url: %w", err)
		}
		client := backend.NewClient(ropts)
		store := redis.NewFromClient(client)
		opts = append(opts,
			scenery.WithStateStore(store),
			scenery.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)),
		)
		closer = store.Close
		p.logger.Debug("using redis state store", "addr", ropts.Addr)
	} else {
		opts = append(opts, scenery.WithStateStore(file.New(p.SessionDir())))
	}

	return scenery.New(g, append(opts, extra...)...), closer, nil
}
