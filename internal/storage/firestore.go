package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const (
	interviewsCollection = "interviews"
	feedbackCollection   = "feedback"
)

// FirestoreStore хранит интервью и оценки в коллекциях interviews и feedback
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore подключается к Firestore. При заданной переменной
// FIRESTORE_EMULATOR_HOST клиент работает с эмулятором.
func NewFirestoreStore(ctx context.Context, projectID string, opts ...option.ClientOption) (*FirestoreStore, error) {
	client, err := firestore.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к firestore: %w", err)
	}
	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) SaveInterview(ctx context.Context, rec *InterviewRecord) error {
	ref := s.docRef(interviewsCollection, rec.ID)
	rec.ID = ref.ID
	if _, err := ref.Set(ctx, rec); err != nil {
		return fmt.Errorf("ошибка сохранения интервью %s: %w", rec.ID, err)
	}
	return nil
}

func (s *FirestoreStore) SaveFeedback(ctx context.Context, rec *FeedbackRecord) error {
	ref := s.docRef(feedbackCollection, rec.ID)
	rec.ID = ref.ID
	if _, err := ref.Set(ctx, rec); err != nil {
		return fmt.Errorf("ошибка сохранения оценки %s: %w", rec.ID, err)
	}
	return nil
}

func (s *FirestoreStore) GetInterview(ctx context.Context, id string) (*InterviewRecord, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	snap, err := s.client.Collection(interviewsCollection).Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ошибка чтения интервью %s: %w", id, err)
	}

	var rec InterviewRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("ошибка разбора интервью %s: %w", id, err)
	}
	return &rec, nil
}

func (s *FirestoreStore) FeedbackByInterview(ctx context.Context, interviewID string) (*FeedbackRecord, error) {
	iter := s.client.Collection(feedbackCollection).
		Where("interviewId", "==", interviewID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	snap, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска оценки интервью %s: %w", interviewID, err)
	}

	var rec FeedbackRecord
	if err := snap.DataTo(&rec); err != nil {
		return nil, fmt.Errorf("ошибка разбора оценки %s: %w", snap.Ref.ID, err)
	}
	return &rec, nil
}

func (s *FirestoreStore) ListInterviews(ctx context.Context, userID string) ([]InterviewRecord, error) {
	query := s.client.Collection(interviewsCollection).Query
	if userID != "" {
		query = query.Where("userId", "==", userID)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var records []InterviewRecord
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения списка интервью: %w", err)
		}

		var rec InterviewRecord
		if err := snap.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("ошибка разбора интервью %s: %w", snap.Ref.ID, err)
		}
		records = append(records, rec)
	}

	// Сортировка на клиенте: where + order by требует составного индекса.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) docRef(collection, id string) *firestore.DocumentRef {
	if id == "" {
		return s.client.Collection(collection).NewDoc()
	}
	return s.client.Collection(collection).Doc(id)
}
