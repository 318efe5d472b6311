package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bistroplan/bistroplan/internal/draft"
)

// FileStore is the local on-device fallback used when no document database
// is reachable. Each (userID, appID) pair maps to one JSON file under the
// base directory; writes go through a temp file and rename so a crash never
// leaves a half-written document.
type FileStore struct {
	baseDir string
	locks   sync.Map // file path -> *sync.Mutex
}

type fileDoc struct {
	Drafts []*draft.Draft  `json:"drafts"`
	Index  []draft.Summary `json:"index"`
}

func NewFileStore(baseDir string) (*FileStore, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create draft store dir: %w", err)
	}
	return &FileStore{baseDir: baseDir}, nil
}

func (s *FileStore) path(userID, appID string) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_%s.json", sanitize(userID), sanitize(appID)))
}

// sanitize keeps ids filesystem-safe; user ids are opaque OIDC subjects and
// may contain separators.
func sanitize(id string) string {
	out := make([]rune, 0, len(id))
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			out = append(out, r)
		default:
			out = append(out, '-')
		}
	}
	return string(out)
}

func (s *FileStore) lock(path string) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(path, &sync.Mutex{})
	return v.(*sync.Mutex)
}

func (s *FileStore) read(path string) (*fileDoc, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &fileDoc{Drafts: []*draft.Draft{}, Index: []draft.Summary{}}, nil
		}
		return nil, fmt.Errorf("read draft file: %w", err)
	}
	var doc fileDoc
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode draft file: %w", err)
	}
	return &doc, nil
}

func (s *FileStore) write(path string, doc *fileDoc) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode draft file: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write temp draft file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace draft file: %w", err)
	}
	return nil
}

func (s *FileStore) LoadDrafts(ctx context.Context, userID, appID string) ([]*draft.Draft, error) {
	p := s.path(userID, appID)
	mu := s.lock(p)
	mu.Lock()
	defer mu.Unlock()
	doc, err := s.read(p)
	if err != nil {
		return nil, err
	}
	return doc.Drafts, nil
}

func (s *FileStore) SaveDraft(ctx context.Context, userID, appID string, d *draft.Draft) error {
	p := s.path(userID, appID)
	mu := s.lock(p)
	mu.Lock()
	defer mu.Unlock()
	doc, err := s.read(p)
	if err != nil {
		return err
	}
	replaced := false
	for i, existing := range doc.Drafts {
		if existing.ID == d.ID {
			doc.Drafts[i] = d
			replaced = true
			break
		}
	}
	if !replaced {
		doc.Drafts = append(doc.Drafts, d)
	}
	return s.write(p, doc)
}

func (s *FileStore) DeleteDraft(ctx context.Context, userID, appID, draftID string) error {
	p := s.path(userID, appID)
	mu := s.lock(p)
	mu.Lock()
	defer mu.Unlock()
	doc, err := s.read(p)
	if err != nil {
		return err
	}
	kept := doc.Drafts[:0]
	found := false
	for _, d := range doc.Drafts {
		if d.ID == draftID {
			found = true
			continue
		}
		kept = append(kept, d)
	}
	if !found {
		return ErrNotFound
	}
	doc.Drafts = kept
	return s.write(p, doc)
}

func (s *FileStore) SaveDraftsIndex(ctx context.Context, userID, appID string, index []draft.Summary) error {
	p := s.path(userID, appID)
	mu := s.lock(p)
	mu.Lock()
	defer mu.Unlock()
	doc, err := s.read(p)
	if err != nil {
		return err
	}
	doc.Index = index
	return s.write(p, doc)
}

func (s *FileStore) LoadDraftsIndex(ctx context.Context, userID, appID string) ([]draft.Summary, error) {
	p := s.path(userID, appID)
	mu := s.lock(p)
	mu.Lock()
	defer mu.Unlock()
	doc, err := s.read(p)
	if err != nil {
		return nil, err
	}
	return doc.Index, nil
}
