package services

import (
	"bytes"
	"context"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/pkg/apperrors"
)

// Shared test doubles for the service layer. The authorizer is built from
// in-memory readers so scope checks run for real against fixture data.

func ptr[T any](v T) *T { return &v }

type fakeDepartmentReader struct {
	byID map[int64]*models.Department
}

func (f *fakeDepartmentReader) GetByID(ctx context.Context, id int64) (*models.Department, error) {
	department, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrDepartmentNotFound
	}
	return department, nil
}

type fakeSubjectReader struct {
	byID     map[int64]*models.Subject
	assigned map[int64]map[int64]bool
}

func (f *fakeSubjectReader) GetByID(ctx context.Context, id int64) (*models.Subject, error) {
	subject, ok := f.byID[id]
	if !ok {
		return nil, apperrors.ErrSubjectNotFound
	}
	return subject, nil
}

func (f *fakeSubjectReader) GetByDepartmentID(ctx context.Context, departmentID int64) ([]*models.Subject, error) {
	var subjects []*models.Subject
	for _, subject := range f.byID {
		if subject.DepartmentID == departmentID {
			subjects = append(subjects, subject)
		}
	}
	return subjects, nil
}

func (f *fakeSubjectReader) GetByFacultyID(ctx context.Context, userID int64) ([]*models.Subject, error) {
	var subjects []*models.Subject
	for id, subject := range f.byID {
		if f.assigned[id][userID] {
			subjects = append(subjects, subject)
		}
	}
	return subjects, nil
}

func (f *fakeSubjectReader) IsFacultyAssigned(ctx context.Context, subjectID, userID int64) (bool, error) {
	return f.assigned[subjectID][userID], nil
}

type fakeUserReader struct {
	byID map[int64]*models.User
}

func (f *fakeUserReader) GetByIDs(ctx context.Context, ids []int64) ([]*models.User, error) {
	var users []*models.User
	for _, id := range ids {
		if user, ok := f.byID[id]; ok {
			users = append(users, user)
		}
	}
	return users, nil
}

// fakeBlobStore records puts and deletes and can be told to fail.
type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return "", f.putErr
	}
	f.objects[key] = data
	return "http://blob.test/" + key, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) stored() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.objects)
}

// makeFileHeaders builds real multipart file headers so header.Open works.
func makeFileHeaders(t *testing.T, names ...string) []*multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for _, name := range names {
		part, err := writer.CreateFormFile("images", name)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake image bytes for " + name))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	form, err := multipart.NewReader(&buf, writer.Boundary()).ReadForm(32 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["images"]
}

func newTestAuthorizer(departments *fakeDepartmentReader, subjects *fakeSubjectReader, users *fakeUserReader) *authz.Authorizer {
	if departments == nil {
		departments = &fakeDepartmentReader{byID: map[int64]*models.Department{}}
	}
	if subjects == nil {
		subjects = &fakeSubjectReader{byID: map[int64]*models.Subject{}}
	}
	if users == nil {
		users = &fakeUserReader{byID: map[int64]*models.User{}}
	}
	return authz.NewAuthorizer(departments, subjects, users)
}
