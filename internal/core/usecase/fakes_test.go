package usecase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/kpetrov/docflow/internal/core/domain"
)

type fakeDocumentStore struct {
	docs   map[string]*domain.Document
	putErr error
	getErr error
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: map[string]*domain.Document{}}
}

func (f *fakeDocumentStore) Put(_ context.Context, doc *domain.Document) error {
	if f.putErr != nil {
		return f.putErr
	}
	clone := *doc
	f.docs[doc.DocumentID] = &clone
	return nil
}

func (f *fakeDocumentStore) Get(_ context.Context, documentID string) (*domain.Document, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	doc, ok := f.docs[documentID]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get document", fmt.Errorf("id %s", documentID))
	}
	clone := *doc
	return &clone, nil
}

func (f *fakeDocumentStore) List(context.Context) ([]domain.Document, error) {
	out := make([]domain.Document, 0, len(f.docs))
	for _, doc := range f.docs {
		out = append(out, *doc)
	}
	return out, nil
}

type fakeStatusLog struct {
	events []domain.StatusEvent
}

func (f *fakeStatusLog) Append(_ context.Context, event domain.StatusEvent) error {
	for _, existing := range f.events {
		if existing.DocumentID == event.DocumentID && existing.Timestamp == event.Timestamp {
			return nil
		}
	}
	f.events = append(f.events, event)
	return nil
}

func (f *fakeStatusLog) ListByDocument(_ context.Context, documentID string) ([]domain.StatusEvent, error) {
	var out []domain.StatusEvent
	for _, event := range f.events {
		if event.DocumentID == documentID {
			out = append(out, event)
		}
	}
	return out, nil
}

type fakeUserStore struct {
	users map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*domain.User{}}
}

func (f *fakeUserStore) Put(_ context.Context, user *domain.User) error {
	if _, ok := f.users[user.Username]; ok {
		return domain.WrapError(domain.ErrConflict, "insert user", fmt.Errorf("username %s", user.Username))
	}
	clone := *user
	f.users[user.Username] = &clone
	return nil
}

func (f *fakeUserStore) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "get user", fmt.Errorf("username %s", username))
	}
	clone := *user
	return &clone, nil
}

type fakeQueue struct {
	published [][]byte
	err       error
}

func (f *fakeQueue) Publish(_ context.Context, payload []byte) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, payload)
	return nil
}

func (f *fakeQueue) Subscribe(context.Context, func(context.Context, []byte) error) error {
	return nil
}

type fakeStorage struct {
	objects    map[string][]byte
	saveErr    error
	openErr    error
	presignErr error
	presignTTL time.Duration
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) Save(_ context.Context, key string, data io.Reader, _ int64, _ string) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.objects[key] = raw
	return nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	raw, ok := f.objects[key]
	if !ok {
		return nil, domain.WrapError(domain.ErrNotFound, "open object", fmt.Errorf("key %s", key))
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, ttl time.Duration) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	f.presignTTL = ttl
	return "https://storage.example/" + key + "?signed=1", nil
}

type fakeExtractor struct {
	text string
}

func (f *fakeExtractor) Extract(string, []byte) string { return f.text }

type fakeProvider struct {
	metadata domain.Metadata
	err      error
	excerpt  string
	calls    int
}

func (f *fakeProvider) Derive(_ context.Context, excerpt, _ string) (domain.Metadata, error) {
	f.calls++
	f.excerpt = excerpt
	if f.err != nil {
		return domain.Metadata{}, f.err
	}
	return f.metadata, nil
}

type fakeClassifier struct {
	classification domain.Classification
	err            error
}

func (f *fakeClassifier) Classify(context.Context, *domain.Document) (domain.Classification, error) {
	if f.err != nil {
		return domain.Classification{}, f.err
	}
	return f.classification, nil
}

type fakeTokenManager struct {
	issueErr error
}

func (f *fakeTokenManager) Issue(userID, username string) (string, domain.TokenClaims, error) {
	if f.issueErr != nil {
		return "", domain.TokenClaims{}, f.issueErr
	}
	return "token-" + userID, domain.TokenClaims{UserID: userID, Username: username}, nil
}

func (f *fakeTokenManager) Verify(raw string) (domain.TokenClaims, error) {
	return domain.TokenClaims{UserID: raw}, nil
}

type fakeHasher struct{}

func (fakeHasher) Hash(plain string) (string, error) { return "hash:" + plain, nil }

func (fakeHasher) Verify(plain, hash string) (bool, error) {
	return hash == "hash:"+plain, nil
}

type fakeTopic struct {
	payloads [][]byte
	subjects []string
	err      error
}

func (f *fakeTopic) Publish(_ context.Context, payload []byte, subject string) error {
	if f.err != nil {
		return f.err
	}
	f.payloads = append(f.payloads, payload)
	f.subjects = append(f.subjects, subject)
	return nil
}
