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

type fakeLectureStore struct {
	nextID    int64
	lectures  map[int64]*models.Lecture
	deleted   []int64
	finalized map[int64][]models.AttendanceEntry

	createErr   error
	finalizeErr error
}

func newFakeLectureStore() *fakeLectureStore {
	return &fakeLectureStore{
		nextID:    1,
		lectures:  map[int64]*models.Lecture{},
		finalized: map[int64][]models.AttendanceEntry{},
	}
}

func (f *fakeLectureStore) Create(ctx context.Context, lecture *models.Lecture) error {
	if f.createErr != nil {
		return f.createErr
	}
	lecture.ID = f.nextID
	f.nextID++
	f.lectures[lecture.ID] = lecture
	return nil
}

func (f *fakeLectureStore) GetByID(ctx context.Context, id int64) (*models.Lecture, error) {
	lecture, ok := f.lectures[id]
	if !ok {
		return nil, apperrors.ErrLectureNotFound
	}
	return lecture, nil
}

func (f *fakeLectureStore) ListBySubjectIDs(ctx context.Context, subjectIDs []int64, filter repositories.LectureFilter) ([]*models.Lecture, error) {
	allowed := make(map[int64]bool, len(subjectIDs))
	for _, id := range subjectIDs {
		allowed[id] = true
	}
	var out []*models.Lecture
	for _, lecture := range f.lectures {
		if allowed[lecture.SubjectID] {
			out = append(out, lecture)
		}
	}
	return out, nil
}

func (f *fakeLectureStore) Finalize(ctx context.Context, id int64, attendance []models.AttendanceEntry, images, annotatedImages []models.ImageRef) error {
	if f.finalizeErr != nil {
		return f.finalizeErr
	}
	f.finalized[id] = attendance
	if lecture, ok := f.lectures[id]; ok {
		lecture.Attendance = attendance
		lecture.Images = images
		lecture.AnnotatedImages = annotatedImages
	}
	return nil
}

func (f *fakeLectureStore) UpdateAttendance(ctx context.Context, id int64, attendance []models.AttendanceEntry) error {
	if lecture, ok := f.lectures[id]; ok {
		lecture.Attendance = attendance
	}
	return nil
}

func (f *fakeLectureStore) Delete(ctx context.Context, id int64) error {
	f.deleted = append(f.deleted, id)
	delete(f.lectures, id)
	return nil
}

func (f *fakeLectureStore) DeleteBySubjectID(ctx context.Context, subjectID int64) (int64, error) {
	var deleted int64
	for id, lecture := range f.lectures {
		if lecture.SubjectID == subjectID {
			f.deleted = append(f.deleted, id)
			delete(f.lectures, id)
			deleted++
		}
	}
	return deleted, nil
}

type fakeCohortStore struct {
	cohort []*models.Student
	err    error
}

func (f *fakeCohortStore) GetCohort(ctx context.Context, departmentID int64, semester int, division string, batch *string) ([]*models.Student, error) {
	return f.cohort, f.err
}

type fakeVerifier struct {
	err     error
	results []recognition.VerifyResult

	gotEmbeddings map[string][]models.Embedding
}

func (f *fakeVerifier) VerifyAttendance(ctx context.Context, images []recognition.Image, studentEmbeddings map[string][]models.Embedding, subjectID, lectureID int64) (*recognition.VerifyResponse, error) {
	f.gotEmbeddings = studentEmbeddings
	if f.err != nil {
		return nil, f.err
	}
	return &recognition.VerifyResponse{Results: f.results}, nil
}

func captureFixture() (*fakeLectureStore, *fakeCohortStore, *fakeVerifier, *fakeBlobStore, *LectureService, authz.Actor) {
	lectures := newFakeLectureStore()
	cohort := &fakeCohortStore{cohort: []*models.Student{
		{ID: 1, RollNumber: "CS2101", Embeddings: []models.Embedding{{Image: "a.jpg", Embedding: []float64{0.1}}}},
		{ID: 2, RollNumber: "CS2102", Embeddings: []models.Embedding{{Image: "b.jpg", Embedding: []float64{0.2}}}},
		{ID: 3, RollNumber: "CS2103"},
	}}
	verifier := &fakeVerifier{results: []recognition.VerifyResult{
		{FileName: "class.jpg", FileSize: 128, Key: "lectures/100/1/annotated/class.jpg", URL: "http://blob.test/annotated", MatchedIDs: []string{"CS2101"}},
	}}
	blobs := newFakeBlobStore()

	departments := &fakeDepartmentReader{byID: map[int64]*models.Department{
		10: {ID: 10, OrganisationID: 1, TotalSemesters: 8},
	}}
	subjects := &fakeSubjectReader{
		byID: map[int64]*models.Subject{
			100: {ID: 100, DepartmentID: 10, Semester: 3, IsActive: true},
		},
		assigned: map[int64]map[int64]bool{100: {7: true}},
	}

	svc := NewLectureService(lectures, cohort, verifier, blobs, newTestAuthorizer(departments, subjects, nil))
	actor := authz.Actor{UserID: 7, Role: models.RoleFaculty, OrganisationID: ptr(int64(1)), DepartmentID: ptr(int64(10))}
	return lectures, cohort, verifier, blobs, svc, actor
}

func captureRequest() *dto.CreateLectureRequest {
	return &dto.CreateLectureRequest{SubjectID: 100, Division: "A"}
}

func TestCreateLecture_Success(t *testing.T) {
	lectures, _, _, blobs, svc, actor := captureFixture()
	files := makeFileHeaders(t, "class.jpg")

	lecture, err := svc.CreateLecture(context.Background(), actor, captureRequest(), files)

	require.NoError(t, err)
	assert.Equal(t, int64(1), lecture.ID)
	assert.Len(t, lecture.Images, 1)
	assert.Len(t, lecture.AnnotatedImages, 1)
	assert.Equal(t, 1, blobs.stored())
	require.Len(t, lectures.finalized[lecture.ID], 3)

	byRoll := map[string]bool{}
	for _, entry := range lecture.Attendance {
		byRoll[entry.RollNumber] = entry.Present
	}
	assert.True(t, byRoll["CS2101"])
	assert.False(t, byRoll["CS2102"])
	assert.False(t, byRoll["CS2103"])
}

func TestCreateLecture_SkipsStudentsWithoutEmbeddings(t *testing.T) {
	_, _, verifier, _, svc, actor := captureFixture()
	files := makeFileHeaders(t, "class.jpg")

	_, err := svc.CreateLecture(context.Background(), actor, captureRequest(), files)

	require.NoError(t, err)
	assert.Contains(t, verifier.gotEmbeddings, "CS2101")
	assert.Contains(t, verifier.gotEmbeddings, "CS2102")
	assert.NotContains(t, verifier.gotEmbeddings, "CS2103")
}

func TestCreateLecture_VerifyFailureRollsEverythingBack(t *testing.T) {
	lectures, _, verifier, blobs, svc, actor := captureFixture()
	verifier.err = apperrors.NewExternalServiceError("recognition service unavailable")
	files := makeFileHeaders(t, "class.jpg")

	_, err := svc.CreateLecture(context.Background(), actor, captureRequest(), files)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrExternalService)
	assert.Equal(t, []int64{1}, lectures.deleted)
	assert.Equal(t, 0, blobs.stored())
	assert.Empty(t, lectures.finalized)
}

func TestCreateLecture_UploadFailureRollsBackRecord(t *testing.T) {
	lectures, _, _, blobs, svc, actor := captureFixture()
	blobs.putErr = errors.New("bucket unavailable")
	files := makeFileHeaders(t, "class.jpg")

	_, err := svc.CreateLecture(context.Background(), actor, captureRequest(), files)

	require.Error(t, err)
	assert.Equal(t, []int64{1}, lectures.deleted)
	assert.Equal(t, 0, blobs.stored())
}

func TestCreateLecture_CommitFailureRemovesAnnotatedImages(t *testing.T) {
	lectures, _, _, blobs, svc, actor := captureFixture()
	lectures.finalizeErr = errors.New("db connection lost")
	files := makeFileHeaders(t, "class.jpg")

	_, err := svc.CreateLecture(context.Background(), actor, captureRequest(), files)

	require.Error(t, err)
	assert.Equal(t, []int64{1}, lectures.deleted)
	assert.Equal(t, 0, blobs.stored())
	assert.Contains(t, blobs.deleted, "lectures/100/1/annotated/class.jpg")
}

func TestCreateLecture_EmptyCohortRejected(t *testing.T) {
	lectures, cohort, _, blobs, svc, actor := captureFixture()
	cohort.cohort = nil
	files := makeFileHeaders(t, "class.jpg")

	_, err := svc.CreateLecture(context.Background(), actor, captureRequest(), files)

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, lectures.lectures)
	assert.Equal(t, 0, blobs.stored())
}

func TestCreateLecture_InactiveSubjectRejected(t *testing.T) {
	_, _, _, _, svc, actor := captureFixture()
	files := makeFileHeaders(t, "class.jpg")

	req := captureRequest()
	req.SubjectID = 100

	subjects := &fakeSubjectReader{
		byID: map[int64]*models.Subject{
			100: {ID: 100, DepartmentID: 10, Semester: 3, IsActive: false},
		},
		assigned: map[int64]map[int64]bool{100: {7: true}},
	}
	departments := &fakeDepartmentReader{byID: map[int64]*models.Department{
		10: {ID: 10, OrganisationID: 1},
	}}
	svc = NewLectureService(newFakeLectureStore(), &fakeCohortStore{}, &fakeVerifier{}, newFakeBlobStore(),
		newTestAuthorizer(departments, subjects, nil))

	_, err := svc.CreateLecture(context.Background(), actor, req, files)

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestCreateLecture_UnassignedFacultyBlocked(t *testing.T) {
	_, _, _, _, svc, _ := captureFixture()
	stranger := authz.Actor{UserID: 8, Role: models.RoleFaculty, OrganisationID: ptr(int64(1)), DepartmentID: ptr(int64(10))}
	files := makeFileHeaders(t, "class.jpg")

	_, err := svc.CreateLecture(context.Background(), stranger, captureRequest(), files)

	assert.ErrorIs(t, err, apperrors.ErrScopeViolation)
}

func TestRegenerate_ReplacesAssetsAndDeletesOldOnes(t *testing.T) {
	lectures, _, _, blobs, svc, actor := captureFixture()
	lectures.lectures[5] = &models.Lecture{
		ID:        5,
		SubjectID: 100,
		Division:  "A",
		Images:    []models.ImageRef{{Key: "lectures/100/5/images/old.jpg"}},
		AnnotatedImages: []models.ImageRef{
			{Key: "lectures/100/5/annotated/old.jpg"},
		},
	}
	files := makeFileHeaders(t, "retake.jpg")

	lecture, err := svc.Regenerate(context.Background(), actor, 5, files)

	require.NoError(t, err)
	assert.Len(t, lecture.Images, 1)
	assert.NotEqual(t, "lectures/100/5/images/old.jpg", lecture.Images[0].Key)
	assert.Contains(t, blobs.deleted, "lectures/100/5/images/old.jpg")
	assert.Contains(t, blobs.deleted, "lectures/100/5/annotated/old.jpg")
}

func TestRegenerate_RequiresFreshUploads(t *testing.T) {
	lectures, _, _, blobs, svc, actor := captureFixture()
	lectures.lectures[5] = &models.Lecture{
		ID:        5,
		SubjectID: 100,
		Division:  "A",
		Images:    []models.ImageRef{{Key: "lectures/100/5/images/old.jpg"}},
	}

	_, err := svc.Regenerate(context.Background(), actor, 5, nil)

	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Empty(t, blobs.deleted, "existing assets stay in place")
}

func TestRegenerate_VerifyFailureKeepsPreviousState(t *testing.T) {
	lectures, _, verifier, blobs, svc, actor := captureFixture()
	previous := []models.AttendanceEntry{{RollNumber: "CS2101", Present: true}}
	lectures.lectures[5] = &models.Lecture{
		ID:         5,
		SubjectID:  100,
		Division:   "A",
		Attendance: previous,
		Images:     []models.ImageRef{{Key: "lectures/100/5/images/old.jpg"}},
	}
	verifier.err = apperrors.NewExternalServiceError("recognition service unavailable")
	files := makeFileHeaders(t, "retake.jpg")

	_, err := svc.Regenerate(context.Background(), actor, 5, files)

	require.Error(t, err)
	assert.Equal(t, previous, lectures.lectures[5].Attendance)
	assert.NotContains(t, blobs.deleted, "lectures/100/5/images/old.jpg")
	assert.Equal(t, 0, blobs.stored(), "fresh uploads must be removed")
	assert.Empty(t, lectures.deleted, "the lecture row must survive a failed regeneration")
}

func TestUpdateAttendance(t *testing.T) {
	lectures, _, _, _, svc, actor := captureFixture()
	lectures.lectures[5] = &models.Lecture{ID: 5, SubjectID: 100, Division: "A"}

	lecture, err := svc.UpdateAttendance(context.Background(), actor, 5, &dto.UpdateLectureRequest{
		Attendance: []dto.AttendanceEntryRequest{
			{RollNumber: "CS2101", Present: true},
			{RollNumber: "CS2102", Present: false},
		},
	})

	require.NoError(t, err)
	require.Len(t, lecture.Attendance, 2)
	assert.True(t, lecture.Attendance[0].Present)
	assert.False(t, lecture.Attendance[1].Present)
}

func TestDeleteLecture_RemovesStoredImages(t *testing.T) {
	lectures, _, _, blobs, svc, actor := captureFixture()
	lectures.lectures[5] = &models.Lecture{
		ID:              5,
		SubjectID:       100,
		Division:        "A",
		Images:          []models.ImageRef{{Key: "lectures/100/5/images/a.jpg"}},
		AnnotatedImages: []models.ImageRef{{Key: "lectures/100/5/annotated/a.jpg"}},
	}

	err := svc.DeleteLecture(context.Background(), actor, 5)

	require.NoError(t, err)
	assert.Equal(t, []int64{5}, lectures.deleted)
	assert.Contains(t, blobs.deleted, "lectures/100/5/images/a.jpg")
	assert.Contains(t, blobs.deleted, "lectures/100/5/annotated/a.jpg")
}
