// Package gitstore implements the content store on Git plumbing in a local
// repository: every document is a blob, reachable through a ref per path,
// and the version token is the blob hash. It backs the "git" remote mode
// where the planner data lives next to a checkout instead of behind the
// GitHub API.
//
// Data structure:
//
//	refs/<namespace>/
//	  data/tasks.json   → blob
//	  data/people.json  → blob
//	  data/config.json  → blob
//	  data/klusplan.ics → blob
package gitstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/mvdberg/klusplan/internal/domain"
)

// Ensure Store implements domain.ContentStore.
var _ domain.ContentStore = (*Store)(nil)

// DefaultNamespace is the ref namespace used when none is configured.
const DefaultNamespace = "klusplan"

// Store keeps planner documents as blobs in a git repository.
// Fields are ordered to minimize memory padding.
type Store struct {
	repo      *git.Repository
	namespace string
	mu        sync.RWMutex
}

// New opens the repository at repoPath.
func New(repoPath, namespace string) (*Store, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("open git repository: %w", err)
	}
	return NewWithRepo(repo, namespace), nil
}

// NewWithRepo creates a Store over an existing repository instance.
func NewWithRepo(repo *git.Repository, namespace string) *Store {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	return &Store{repo: repo, namespace: namespace}
}

func (s *Store) docRef(path string) plumbing.ReferenceName {
	return plumbing.ReferenceName("refs/" + s.namespace + "/" + path)
}

// Read returns the blob behind the path's ref. A missing ref maps to
// domain.ErrNotFound.
func (s *Store) Read(_ context.Context, path string) (domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ref, err := s.repo.Reference(s.docRef(path), true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return domain.Document{}, fmt.Errorf("%s: %w", path, domain.ErrNotFound)
		}
		return domain.Document{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	data, err := s.readBlob(ref.Hash())
	if err != nil {
		return domain.Document{}, fmt.Errorf("read %s: %w", path, err)
	}
	return domain.Document{Content: data, Version: ref.Hash().String()}, nil
}

// Write stores a new blob and moves the path's ref to it. The version
// must match the current blob hash; a moved ref maps to domain.ErrConflict.
func (s *Store) Write(_ context.Context, path, _ string, content []byte, version string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := ""
	if ref, err := s.repo.Reference(s.docRef(path), true); err == nil {
		current = ref.Hash().String()
	} else if !errors.Is(err, plumbing.ErrReferenceNotFound) {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	if current != version {
		return "", fmt.Errorf("%s: %w", path, domain.ErrConflict)
	}

	hash, err := s.writeBlob(content)
	if err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	ref := plumbing.NewHashReference(s.docRef(path), hash)
	if err := s.repo.Storer.SetReference(ref); err != nil {
		return "", fmt.Errorf("update ref for %s: %w", path, err)
	}
	return hash.String(), nil
}

// Validate checks that the repository's ref storage is reachable.
func (s *Store) Validate(_ context.Context) error {
	iter, err := s.repo.References()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrRemoteUnreachable, err)
	}
	iter.Close()
	return nil
}

func (s *Store) writeBlob(data []byte) (plumbing.Hash, error) {
	obj := s.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(data)))

	writer, err := obj.Writer()
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("create blob writer: %w", err)
	}
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return plumbing.ZeroHash, fmt.Errorf("write blob: %w", err)
	}
	_ = writer.Close()

	hash, err := s.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return plumbing.ZeroHash, fmt.Errorf("store blob: %w", err)
	}
	return hash, nil
}

func (s *Store) readBlob(hash plumbing.Hash) ([]byte, error) {
	blob, err := s.repo.BlobObject(hash)
	if err != nil {
		return nil, fmt.Errorf("get blob: %w", err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read blob data: %w", err)
	}
	return data, nil
}
