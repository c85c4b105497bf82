package wiki

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-git/go-git/v5"
	gitconfig "github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"

	"defectscope/internal/config"
	"defectscope/internal/logging"
)

// ErrNoRemote is returned when publishing is attempted without a configured
// wiki remote.
var ErrNoRemote = errors.New("no wiki remote configured")

// Publisher pushes the wiki directory to its git remote. The wiki directory
// is expected to be (or becomes) its own repository, separate from the
// source repository, which is how hosted wikis are stored.
type Publisher struct {
	cfg config.PublishConfig
	dir string
	log *logging.Logger
}

// NewPublisher creates a publisher for the wiki checkout at dir.
func NewPublisher(cfg config.PublishConfig, dir string) *Publisher {
	return &Publisher{cfg: cfg, dir: dir, log: logging.Get(logging.CategoryPublish)}
}

// Pull fetches the latest wiki state before a run. Callers treat failure as
// non-fatal: a local-only checkout still generates fine.
func (p *Publisher) Pull(ctx context.Context) error {
	repo, err := git.PlainOpen(p.dir)
	if err != nil {
		return fmt.Errorf("failed to open wiki repository at %s: %w", p.dir, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	p.log.Info("pulling latest wiki changes")
	pullOpts := &git.PullOptions{
		RemoteName: "origin",
		Auth:       p.auth(),
	}
	if p.cfg.Branch != "" {
		pullOpts.ReferenceName = plumbing.NewBranchReferenceName(p.cfg.Branch)
	}
	err = wt.PullContext(ctx, pullOpts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		p.log.Info("wiki already up to date")
		return nil
	}
	if err != nil {
		return fmt.Errorf("pull failed: %w", err)
	}
	return nil
}

// Publish stages everything under the wiki directory, commits when dirty,
// and pushes to the configured remote.
func (p *Publisher) Publish(ctx context.Context, message string) error {
	if p.cfg.Remote == "" {
		return ErrNoRemote
	}

	repo, err := p.openOrInit()
	if err != nil {
		return err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}

	if err := wt.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return fmt.Errorf("failed to stage wiki pages: %w", err)
	}

	status, err := wt.Status()
	if err != nil {
		return fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		p.log.Info("no wiki changes to publish")
		return nil
	}

	commit, err := wt.Commit(message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  p.cfg.AuthorName,
			Email: p.cfg.AuthorEmail,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("commit failed: %w", err)
	}
	p.log.Info("committed wiki changes as %s", commit.String()[:8])

	pushOpts := &git.PushOptions{
		RemoteName: "origin",
		Auth:       p.auth(),
	}
	if p.cfg.Branch != "" {
		spec := fmt.Sprintf("HEAD:%s", plumbing.NewBranchReferenceName(p.cfg.Branch))
		pushOpts.RefSpecs = []gitconfig.RefSpec{gitconfig.RefSpec(spec)}
	}
	err = repo.PushContext(ctx, pushOpts)
	if errors.Is(err, git.NoErrAlreadyUpToDate) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("push failed: %w", err)
	}
	p.log.Info("pushed wiki to %s", p.cfg.Remote)
	return nil
}

// openOrInit opens the wiki repository, initializing one with an origin
// remote on first publish.
func (p *Publisher) openOrInit() (*git.Repository, error) {
	repo, err := git.PlainOpen(p.dir)
	if err == nil {
		return repo, nil
	}
	if !errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, fmt.Errorf("failed to open wiki repository at %s: %w", p.dir, err)
	}

	p.log.Info("initializing wiki repository at %s", p.dir)
	repo, err = git.PlainInit(p.dir, false)
	if err != nil {
		return nil, fmt.Errorf("failed to init wiki repository: %w", err)
	}
	_, err = repo.CreateRemote(&gitconfig.RemoteConfig{
		Name: "origin",
		URLs: []string{p.cfg.Remote},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to configure wiki remote: %w", err)
	}
	return repo, nil
}

func (p *Publisher) auth() *githttp.BasicAuth {
	if p.cfg.Token == "" {
		return nil
	}
	// Hosted git providers accept any username with a token password.
	return &githttp.BasicAuth{Username: "git", Password: p.cfg.Token}
}
