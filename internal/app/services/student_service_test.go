package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/recognition"
)

type fakeStudentStore struct {
	nextID          int64
	created         []*models.Student
	deleted         []int64
	assetsCommitted map[int64][]models.ImageRef
	students        map[int64]*models.Student
	promotions      []repositories.Promotion

	createErr       error
	updateAssetsErr error
	promotionsErr   error
}

func newFakeStudentStore() *fakeStudentStore {
	return &fakeStudentStore{
		nextID:          1,
		assetsCommitted: map[int64][]models.ImageRef{},
		students:        map[int64]*models.Student{},
	}
}

func (f *fakeStudentStore) Create(ctx context.Context, student *models.Student) error {
	if f.createErr != nil {
		return f.createErr
	}
	student.ID = f.nextID
	f.nextID++
	f.created = append(f.created, student)
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentStore) GetByID(ctx context.Context, id int64) (*models.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, apperrors.ErrStudentNotFound
	}
	return student, nil
}

func (f *fakeStudentStore) List(ctx context.Context, departmentID int64, filter repositories.StudentFilter) ([]*models.Student, error) {
	var out []*models.Student
	for _, student := range f.students {
		if student.DepartmentID != departmentID {
			continue
		}
		if filter.IsAlumni != nil && student.IsAlumni != *filter.IsAlumni {
			continue
		}
		out = append(out, student)
	}
	return out, nil
}

func (f *fakeStudentStore) Update(ctx context.Context, student *models.Student) error {
	f.students[student.ID] = student
	return nil
}

func (f *fakeStudentStore) UpdateAssets(ctx context.Context, id int64, images []models.ImageRef, embeddings []models.Embedding) error {
	if f.updateAssetsErr != nil {
		return f.updateAssetsErr
	}
	f.assetsCommitted[id] = images
	if student, ok := f.students[id]; ok {
		student.Images = images
		student.Embeddings = embeddings
	}
	return nil
}

func (f *fakeStudentStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.students, id)
	return nil
}

func (f *fakeStudentStore) DeleteByDepartmentID(ctx context.Context, departmentID int64) (int64, error) {
	var deleted int64
	for id, student := range f.students {
		if student.DepartmentID == departmentID {
			f.deleted = append(f.deleted, id)
			delete(f.students, id)
			deleted++
		}
	}
	return deleted, nil
}

func (f *fakeStudentStore) ApplyPromotions(ctx context.Context, promotions []repositories.Promotion) error {
	if f.promotionsErr != nil {
		return f.promotionsErr
	}
	f.promotions = promotions
	for _, p := range promotions {
		if student, ok := f.students[p.StudentID]; ok {
			student.Semester = p.Semester
			student.IsAlumni = p.IsAlumni
		}
	}
	return nil
}

type fakeEmbedder struct {
	err  error
	resp *recognition.EmbeddingsResponse
}

func (f *fakeEmbedder) GenerateEmbeddings(ctx context.Context, images []recognition.Image) (*recognition.EmbeddingsResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.resp != nil {
		return f.resp, nil
	}
	embeddings := make([]models.Embedding, 0, len(images))
	for _, image := range images {
		embeddings = append(embeddings, models.Embedding{
			Image:     image.Name,
			Embedding: []float64{0.1, 0.2, 0.3},
		})
	}
	return &recognition.EmbeddingsResponse{Embeddings: embeddings}, nil
}

func enrollmentFixture() (*fakeStudentStore, *fakeEmbedder, *fakeBlobStore, *StudentService, authz.Actor) {
	store := newFakeStudentStore()
	embedder := &fakeEmbedder{}
	blobs := newFakeBlobStore()
	departments := &fakeDepartmentReader{byID: map[int64]*models.Department{
		10: {ID: 10, OrganisationID: 1, Name: "Computer Science", TotalSemesters: 8},
	}}
	svc := NewStudentService(store, embedder, blobs, newTestAuthorizer(departments, nil, nil))
	actor := authz.Actor{UserID: 5, Role: models.RoleDeptAdmin, OrganisationID: ptr(int64(1)), DepartmentID: ptr(int64(10))}
	return store, embedder, blobs, svc, actor
}

func enrollmentRequest() *dto.CreateStudentRequest {
	return &dto.CreateStudentRequest{
		Name:       "Asha Patel",
		RollNumber: "CS2101",
		Division:   "A",
		Email:      "asha@example.com",
		Semester:   3,
	}
}

func TestCreateStudent_Success(t *testing.T) {
	store, _, blobs, svc, actor := enrollmentFixture()
	files := makeFileHeaders(t, "front.jpg", "left.png")

	student, err := svc.CreateStudent(context.Background(), actor, 10, enrollmentRequest(), files)

	require.NoError(t, err)
	assert.Equal(t, int64(1), student.ID)
	assert.Len(t, student.Images, 2)
	assert.Len(t, student.Embeddings, 2)
	assert.Equal(t, 2, blobs.stored())
	assert.Len(t, store.assetsCommitted[student.ID], 2)
	assert.Empty(t, store.deleted)
}

func TestCreateStudent_EmbeddingFailureStillEnrolls(t *testing.T) {
	store, embedder, blobs, svc, actor := enrollmentFixture()
	embedder.err = apperrors.NewExternalServiceError("recognition service unavailable")
	files := makeFileHeaders(t, "front.jpg")

	student, err := svc.CreateStudent(context.Background(), actor, 10, enrollmentRequest(), files)

	require.NoError(t, err)
	assert.Len(t, student.Images, 1)
	assert.Empty(t, student.Embeddings)
	assert.Equal(t, 1, blobs.stored())
	assert.Empty(t, store.deleted)
}

func TestCreateStudent_PersistFailureLeavesNothing(t *testing.T) {
	store, _, blobs, svc, actor := enrollmentFixture()
	store.createErr = apperrors.ErrRollNumberAlreadyExists
	files := makeFileHeaders(t, "front.jpg")

	_, err := svc.CreateStudent(context.Background(), actor, 10, enrollmentRequest(), files)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
	assert.Equal(t, 0, blobs.stored())
}

func TestCreateStudent_UploadFailureRollsBackRecord(t *testing.T) {
	store, _, blobs, svc, actor := enrollmentFixture()
	blobs.putErr = errors.New("bucket unavailable")
	files := makeFileHeaders(t, "front.jpg")

	_, err := svc.CreateStudent(context.Background(), actor, 10, enrollmentRequest(), files)

	require.Error(t, err)
	assert.Equal(t, []int64{1}, store.deleted)
	assert.Equal(t, 0, blobs.stored())
}

func TestCreateStudent_CommitFailureRollsEverythingBack(t *testing.T) {
	store, _, blobs, svc, actor := enrollmentFixture()
	store.updateAssetsErr = errors.New("db connection lost")
	files := makeFileHeaders(t, "front.jpg", "left.jpeg")

	_, err := svc.CreateStudent(context.Background(), actor, 10, enrollmentRequest(), files)

	require.Error(t, err)
	assert.Equal(t, []int64{1}, store.deleted)
	assert.Equal(t, 0, blobs.stored(), "uploaded images must be removed on rollback")
}

func TestCreateStudent_SemesterBeyondDepartment(t *testing.T) {
	_, _, _, svc, actor := enrollmentFixture()
	req := enrollmentRequest()
	req.Semester = 9
	files := makeFileHeaders(t, "front.jpg")

	_, err := svc.CreateStudent(context.Background(), actor, 10, req, files)

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateStudent_RejectsUnsupportedExtension(t *testing.T) {
	_, _, blobs, svc, actor := enrollmentFixture()
	files := makeFileHeaders(t, "notes.pdf")

	_, err := svc.CreateStudent(context.Background(), actor, 10, enrollmentRequest(), files)

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Equal(t, 0, blobs.stored())
}

func TestCreateStudent_ScopeViolation(t *testing.T) {
	_, _, _, svc, _ := enrollmentFixture()
	foreign := authz.Actor{UserID: 6, Role: models.RoleDeptAdmin, OrganisationID: ptr(int64(1)), DepartmentID: ptr(int64(99))}
	files := makeFileHeaders(t, "front.jpg")

	_, err := svc.CreateStudent(context.Background(), foreign, 10, enrollmentRequest(), files)

	assert.ErrorIs(t, err, apperrors.ErrScopeViolation)
}

func TestPromoteStudents(t *testing.T) {
	store, _, _, svc, actor := enrollmentFixture()
	store.students[1] = &models.Student{ID: 1, DepartmentID: 10, RollNumber: "CS1901", Semester: 8}
	store.students[2] = &models.Student{ID: 2, DepartmentID: 10, RollNumber: "CS2101", Semester: 3}
	store.students[3] = &models.Student{ID: 3, DepartmentID: 10, RollNumber: "CS1801", Semester: 8, IsAlumni: true}

	resp, err := svc.PromoteStudents(context.Background(), actor, 10)

	require.NoError(t, err)
	assert.Equal(t, 1, resp.PromotedCount)
	assert.Equal(t, 1, resp.AlumniCount)

	assert.True(t, store.students[1].IsAlumni)
	assert.Equal(t, 9, store.students[1].Semester, "graduating students still advance their counter")
	assert.Equal(t, 4, store.students[2].Semester)
	assert.True(t, store.students[3].IsAlumni, "existing alumni stay untouched")
	assert.Equal(t, 8, store.students[3].Semester)
}

func TestPromoteStudents_AlumniAreNotPromotedAgain(t *testing.T) {
	store, _, _, svc, actor := enrollmentFixture()
	store.students[1] = &models.Student{ID: 1, DepartmentID: 10, RollNumber: "CS1901", Semester: 8}

	_, err := svc.PromoteStudents(context.Background(), actor, 10)
	require.NoError(t, err)
	require.True(t, store.students[1].IsAlumni)
	require.Equal(t, 9, store.students[1].Semester)

	resp, err := svc.PromoteStudents(context.Background(), actor, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, resp.PromotedCount+resp.AlumniCount)
	assert.Equal(t, 9, store.students[1].Semester, "a graduated student is excluded from later batches")
}

func TestPromoteStudents_FailedBatchChangesNothing(t *testing.T) {
	store, _, _, svc, actor := enrollmentFixture()
	store.students[1] = &models.Student{ID: 1, DepartmentID: 10, RollNumber: "CS2101", Semester: 3}
	store.promotionsErr = errors.New("tx aborted")

	_, err := svc.PromoteStudents(context.Background(), actor, 10)

	require.Error(t, err)
	assert.Equal(t, 3, store.students[1].Semester)
}

func TestDeleteStudent_RemovesStoredImages(t *testing.T) {
	store, _, blobs, svc, actor := enrollmentFixture()
	store.students[7] = &models.Student{
		ID:           7,
		DepartmentID: 10,
		RollNumber:   "CS2107",
		Images: []models.ImageRef{
			{Key: "students/CS2107/1.jpg"},
			{Key: "students/CS2107/2.jpg"},
		},
	}

	err := svc.DeleteStudent(context.Background(), actor, 7)

	require.NoError(t, err)
	assert.Equal(t, []int64{7}, store.deleted)
	assert.Equal(t, []string{"students/CS2107/1.jpg", "students/CS2107/2.jpg"}, blobs.deleted)
}
