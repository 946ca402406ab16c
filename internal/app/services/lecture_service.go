package services

import (
	"context"
	"mime/multipart"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/presentia/backend/internal/app/authz"
	"github.com/presentia/backend/internal/app/models"
	"github.com/presentia/backend/internal/app/models/dto"
	"github.com/presentia/backend/internal/app/repositories"
	"github.com/presentia/backend/internal/pkg/apperrors"
	"github.com/presentia/backend/internal/pkg/blobstore"
	"github.com/presentia/backend/internal/pkg/logger"
	"github.com/presentia/backend/internal/pkg/recognition"
	"github.com/presentia/backend/internal/pkg/saga"
	"github.com/presentia/backend/internal/pkg/validation"
)

// lectureStore is the slice of the lecture repository this service needs
type lectureStore interface {
	Create(ctx context.Context, lecture *models.Lecture) error
	GetByID(ctx context.Context, id int64) (*models.Lecture, error)
	ListBySubjectIDs(ctx context.Context, subjectIDs []int64, filter repositories.LectureFilter) ([]*models.Lecture, error)
	Finalize(ctx context.Context, id int64, attendance []models.AttendanceEntry, images, annotatedImages []models.ImageRef) error
	UpdateAttendance(ctx context.Context, id int64, attendance []models.AttendanceEntry) error
	Delete(ctx context.Context, id int64) error
	DeleteBySubjectID(ctx context.Context, subjectID int64) (int64, error)
}

// cohortStore loads the students a lecture draws attendance from
type cohortStore interface {
	GetCohort(ctx context.Context, departmentID int64, semester int, division string, batch *string) ([]*models.Student, error)
}

// verifyClient matches lecture photos against student embeddings
type verifyClient interface {
	VerifyAttendance(ctx context.Context, images []recognition.Image, studentEmbeddings map[string][]models.Embedding, subjectID, lectureID int64) (*recognition.VerifyResponse, error)
}

// LectureService handles lecture capture. Capture is all-or-nothing:
// unlike enrollment, a recognition failure rolls the whole pipeline back
// and leaves neither a lecture row nor stored images behind.
type LectureService struct {
	lectures   lectureStore
	students   cohortStore
	recognizer verifyClient
	store      blobstore.Store
	authorizer *authz.Authorizer
}

// NewLectureService creates a new lecture service
func NewLectureService(lectures lectureStore, students cohortStore, recognizer verifyClient, store blobstore.Store, authorizer *authz.Authorizer) *LectureService {
	return &LectureService{
		lectures:   lectures,
		students:   students,
		recognizer: recognizer,
		store:      store,
		authorizer: authorizer,
	}
}

// CreateLecture captures a lecture from classroom photos: the photos are
// stored, matched against the cohort's embeddings, and the derived
// attendance sheet is committed with the lecture.
func (s *LectureService) CreateLecture(ctx context.Context, actor authz.Actor, req *dto.CreateLectureRequest, files []*multipart.FileHeader) (*models.Lecture, error) {
	subject, department, err := s.authorizer.ResolveSubject(ctx, actor, req.SubjectID)
	if err != nil {
		return nil, err
	}
	if !subject.IsActive {
		return nil, apperrors.NewValidationError("subject is no longer active")
	}
	if err := validation.ValidateImageFiles(files); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	uploads, err := readUploadedFiles(files)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	cohort, err := s.students.GetCohort(ctx, department.ID, subject.Semester, req.Division, req.Batch)
	if err != nil {
		return nil, err
	}
	if len(cohort) == 0 {
		return nil, apperrors.NewValidationError("no students match the lecture's division and batch")
	}

	lecture := &models.Lecture{
		SubjectID:       subject.ID,
		Division:        req.Division,
		Batch:           req.Batch,
		Attendance:      []models.AttendanceEntry{},
		Images:          []models.ImageRef{},
		AnnotatedImages: []models.ImageRef{},
	}

	var (
		images    []models.ImageRef
		annotated []models.ImageRef
	)

	pipeline := saga.New(logger.WithField("pipeline", "lecture-capture"))
	err = pipeline.Execute(ctx,
		saga.Step{
			Name: "persist-lecture",
			Run: func(ctx context.Context) error {
				return s.lectures.Create(ctx, lecture)
			},
			Undo: func(ctx context.Context) error {
				return s.lectures.Delete(ctx, lecture.ID)
			},
		},
		saga.Step{
			Name: "upload-images",
			Run: func(ctx context.Context) error {
				uploaded, err := s.uploadLectureImages(ctx, subject.ID, lecture.ID, uploads)
				images = uploaded
				return err
			},
			Undo: func(ctx context.Context) error {
				return s.deleteRefs(ctx, images)
			},
		},
		saga.Step{
			Name: "verify-attendance",
			Run: func(ctx context.Context) error {
				results, err := s.verifyCohort(ctx, uploads, cohort, subject.ID, lecture.ID)
				if err != nil {
					return err
				}
				lecture.Attendance = deriveAttendance(cohort, results)
				annotated = annotatedRefs(results)
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.deleteRefs(ctx, annotated)
			},
		},
		saga.Step{
			Name: "commit-lecture",
			Run: func(ctx context.Context) error {
				return s.lectures.Finalize(ctx, lecture.ID, lecture.Attendance, images, annotated)
			},
		},
	)
	if err != nil {
		return nil, err
	}

	lecture.Images = images
	lecture.AnnotatedImages = annotated

	logger.Info().Int64("lectureID", lecture.ID).Int64("subjectID", subject.ID).Int("students", len(cohort)).Msg("Lecture captured")
	return lecture, nil
}

// Regenerate reruns attendance capture for an existing lecture with a
// fresh set of photos. On success the previous images are replaced; on
// failure the lecture keeps its previous state and the new uploads are
// removed.
func (s *LectureService) Regenerate(ctx context.Context, actor authz.Actor, id int64, files []*multipart.FileHeader) (*models.Lecture, error) {
	lecture, err := s.lectures.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	subject, department, err := s.authorizer.ResolveSubject(ctx, actor, lecture.SubjectID)
	if err != nil {
		return nil, err
	}
	if err := validation.ValidateImageFiles(files); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	uploads, err := readUploadedFiles(files)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	cohort, err := s.students.GetCohort(ctx, department.ID, subject.Semester, lecture.Division, lecture.Batch)
	if err != nil {
		return nil, err
	}
	if len(cohort) == 0 {
		return nil, apperrors.NewValidationError("no students match the lecture's division and batch")
	}

	previousImages := lecture.Images
	previousAnnotated := lecture.AnnotatedImages

	var (
		images     []models.ImageRef
		annotated  []models.ImageRef
		attendance []models.AttendanceEntry
	)

	pipeline := saga.New(logger.WithField("pipeline", "lecture-regenerate"))
	err = pipeline.Execute(ctx,
		saga.Step{
			Name: "upload-images",
			Run: func(ctx context.Context) error {
				uploaded, err := s.uploadLectureImages(ctx, subject.ID, lecture.ID, uploads)
				images = uploaded
				return err
			},
			Undo: func(ctx context.Context) error {
				return s.deleteRefs(ctx, images)
			},
		},
		saga.Step{
			Name: "verify-attendance",
			Run: func(ctx context.Context) error {
				results, err := s.verifyCohort(ctx, uploads, cohort, subject.ID, lecture.ID)
				if err != nil {
					return err
				}
				attendance = deriveAttendance(cohort, results)
				annotated = annotatedRefs(results)
				return nil
			},
			Undo: func(ctx context.Context) error {
				return s.deleteRefs(ctx, annotated)
			},
		},
		saga.Step{
			Name: "commit-lecture",
			Run: func(ctx context.Context) error {
				return s.lectures.Finalize(ctx, lecture.ID, attendance, images, annotated)
			},
		},
	)
	if err != nil {
		return nil, err
	}

	// The old assets are unreferenced once the new sheet is committed.
	if err := s.deleteRefs(ctx, append(previousImages, previousAnnotated...)); err != nil {
		logger.Warn().Err(err).Int64("lectureID", lecture.ID).Msg("Failed to delete superseded lecture images")
	}

	lecture.Attendance = attendance
	lecture.Images = images
	lecture.AnnotatedImages = annotated
	return lecture, nil
}

func (s *LectureService) uploadLectureImages(ctx context.Context, subjectID, lectureID int64, uploads []recognition.Image) ([]models.ImageRef, error) {
	slots := make([]*models.ImageRef, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, upload := range uploads {
		g.Go(func() error {
			key := blobstore.LectureKey(subjectID, lectureID, blobstore.ObjectName(upload.Name))
			url, err := s.store.Put(gctx, key, upload.Content, contentTypeFor(upload.Name))
			if err != nil {
				return err
			}
			slots[i] = &models.ImageRef{
				FileName:   upload.Name,
				FileSize:   int64(len(upload.Content)),
				Key:        key,
				URL:        url,
				UploadedAt: time.Now(),
			}
			return nil
		})
	}
	err := g.Wait()

	var images []models.ImageRef
	for _, slot := range slots {
		if slot != nil {
			images = append(images, *slot)
		}
	}
	return images, err
}

func (s *LectureService) verifyCohort(ctx context.Context, uploads []recognition.Image, cohort []*models.Student, subjectID, lectureID int64) ([]recognition.VerifyResult, error) {
	embeddings := make(map[string][]models.Embedding, len(cohort))
	for _, student := range cohort {
		if len(student.Embeddings) > 0 {
			embeddings[student.RollNumber] = student.Embeddings
		}
	}

	resp, err := s.recognizer.VerifyAttendance(ctx, uploads, embeddings, subjectID, lectureID)
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (s *LectureService) deleteRefs(ctx context.Context, refs []models.ImageRef) error {
	var lastErr error
	for _, ref := range refs {
		if err := s.store.Delete(ctx, ref.Key); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// deriveAttendance marks a student present when any photo matched their
// roll number. Every cohort member gets a row, present or not.
func deriveAttendance(cohort []*models.Student, results []recognition.VerifyResult) []models.AttendanceEntry {
	matched := make(map[string]bool)
	for _, result := range results {
		for _, id := range result.MatchedIDs {
			matched[id] = true
		}
	}

	entries := make([]models.AttendanceEntry, 0, len(cohort))
	for _, student := range cohort {
		entries = append(entries, models.AttendanceEntry{
			RollNumber: student.RollNumber,
			Present:    matched[student.RollNumber],
		})
	}
	return entries
}

func annotatedRefs(results []recognition.VerifyResult) []models.ImageRef {
	refs := make([]models.ImageRef, 0, len(results))
	for _, result := range results {
		refs = append(refs, models.ImageRef{
			FileName:   result.FileName,
			FileSize:   result.FileSize,
			Key:        result.Key,
			URL:        result.URL,
			UploadedAt: time.Now(),
		})
	}
	return refs
}

// GetLecture retrieves a lecture within the actor's scope
func (s *LectureService) GetLecture(ctx context.Context, actor authz.Actor, id int64) (*models.Lecture, error) {
	lecture, err := s.lectures.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, _, err := s.authorizer.ResolveSubject(ctx, actor, lecture.SubjectID); err != nil {
		return nil, err
	}
	return lecture, nil
}

// ListLectures retrieves lectures of the subjects visible to the actor
func (s *LectureService) ListLectures(ctx context.Context, actor authz.Actor, departmentID int64, req *dto.LectureFilterRequest) ([]*models.Lecture, error) {
	subjects, err := s.authorizer.VisibleSubjects(ctx, actor, departmentID)
	if err != nil {
		return nil, err
	}

	subjectIDs := make([]int64, 0, len(subjects))
	for _, subject := range subjects {
		subjectIDs = append(subjectIDs, subject.ID)
	}

	filter := repositories.LectureFilter{}
	if req.SubjectID != nil {
		filter.SubjectID = *req.SubjectID
	}
	if req.Date != nil && *req.Date != "" {
		date, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return nil, apperrors.NewValidationError("date must be in YYYY-MM-DD format")
		}
		filter.Date = &date
	}

	return s.lectures.ListBySubjectIDs(ctx, subjectIDs, filter)
}

// UpdateAttendance applies manual corrections to a lecture's sheet
func (s *LectureService) UpdateAttendance(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateLectureRequest) (*models.Lecture, error) {
	lecture, err := s.GetLecture(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	entries := make([]models.AttendanceEntry, 0, len(req.Attendance))
	for _, entry := range req.Attendance {
		entries = append(entries, models.AttendanceEntry{
			RollNumber: entry.RollNumber,
			Present:    entry.Present,
		})
	}

	if err := s.lectures.UpdateAttendance(ctx, lecture.ID, entries); err != nil {
		return nil, err
	}

	lecture.Attendance = entries
	return lecture, nil
}

// DeleteLecture removes a lecture and its stored images
func (s *LectureService) DeleteLecture(ctx context.Context, actor authz.Actor, id int64) error {
	lecture, err := s.GetLecture(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.lectures.Delete(ctx, lecture.ID); err != nil {
		return err
	}

	if err := s.deleteRefs(ctx, append(lecture.Images, lecture.AnnotatedImages...)); err != nil {
		logger.Warn().Err(err).Int64("lectureID", lecture.ID).Msg("Failed to delete lecture images")
	}
	return nil
}

// DeleteAllLectures removes every lecture of a subject and their stored
// images.
func (s *LectureService) DeleteAllLectures(ctx context.Context, actor authz.Actor, subjectID int64) (int64, error) {
	subject, _, err := s.authorizer.ResolveSubject(ctx, actor, subjectID)
	if err != nil {
		return 0, err
	}

	lectures, err := s.lectures.ListBySubjectIDs(ctx, []int64{subject.ID}, repositories.LectureFilter{})
	if err != nil {
		return 0, err
	}

	deleted, err := s.lectures.DeleteBySubjectID(ctx, subject.ID)
	if err != nil {
		return 0, err
	}

	for _, lecture := range lectures {
		if err := s.deleteRefs(ctx, append(lecture.Images, lecture.AnnotatedImages...)); err != nil {
			logger.Warn().Err(err).Int64("lectureID", lecture.ID).Msg("Failed to delete lecture images")
		}
	}

	logger.Info().Int64("subjectID", subject.ID).Int64("lectures", deleted).Msg("Lectures deleted")
	return deleted, nil
}
