package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const (
	interviewPrefix = "interview_"
	feedbackPrefix  = "feedback_"
)

// FileStore хранит каждую запись в отдельном JSON файле:
// interview_<id>.json и feedback_<id>.json
type FileStore struct {
	fs  afero.Fs
	dir string
	mu  sync.RWMutex
}

// NewFileStore создает файловое хранилище в каталоге dir
func NewFileStore(fs afero.Fs, dir string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("ошибка создания директории %s: %w", dir, err)
	}
	return &FileStore{fs: fs, dir: dir}, nil
}

func (s *FileStore) SaveInterview(_ context.Context, rec *InterviewRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return s.write(interviewPrefix+rec.ID, rec)
}

func (s *FileStore) SaveFeedback(_ context.Context, rec *FeedbackRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	return s.write(feedbackPrefix+rec.ID, rec)
}

func (s *FileStore) GetInterview(_ context.Context, id string) (*InterviewRecord, error) {
	if !validID(id) {
		return nil, ErrNotFound
	}
	var rec InterviewRecord
	if err := s.read(interviewPrefix+id, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *FileStore) FeedbackByInterview(_ context.Context, interviewID string) (*FeedbackRecord, error) {
	names, err := s.list(feedbackPrefix)
	if err != nil {
		return nil, err
	}

	for _, name := range names {
		var rec FeedbackRecord
		if err := s.read(name, &rec); err != nil {
			return nil, err
		}
		if rec.InterviewID == interviewID {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (s *FileStore) ListInterviews(_ context.Context, userID string) ([]InterviewRecord, error) {
	names, err := s.list(interviewPrefix)
	if err != nil {
		return nil, err
	}

	records := make([]InterviewRecord, 0, len(names))
	for _, name := range names {
		var rec InterviewRecord
		if err := s.read(name, &rec); err != nil {
			return nil, err
		}
		if userID == "" || rec.UserID == userID {
			records = append(records, rec)
		}
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) write(name string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации записи: %w", err)
	}

	path := filepath.Join(s.dir, name+".json")

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := afero.WriteFile(s.fs, path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}
	return nil
}

func (s *FileStore) read(name string, v interface{}) error {
	path := filepath.Join(s.dir, name+".json")

	s.mu.RLock()
	data, err := afero.ReadFile(s.fs, path)
	s.mu.RUnlock()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("ошибка десериализации JSON %s: %w", path, err)
	}
	return nil
}

// list возвращает имена записей с префиксом без расширения
func (s *FileStore) list(prefix string) ([]string, error) {
	s.mu.RLock()
	entries, err := afero.ReadDir(s.fs, s.dir)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения директории %s: %w", s.dir, err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" || !strings.HasPrefix(name, prefix) {
			continue
		}
		names = append(names, strings.TrimSuffix(name, ".json"))
	}
	return names, nil
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\.`)
}
