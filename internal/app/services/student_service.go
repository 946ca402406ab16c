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

// studentStore is the slice of the student repository this service needs
type studentStore interface {
	Create(ctx context.Context, student *models.Student) error
	GetByID(ctx context.Context, id int64) (*models.Student, error)
	List(ctx context.Context, departmentID int64, filter repositories.StudentFilter) ([]*models.Student, error)
	Update(ctx context.Context, student *models.Student) error
	UpdateAssets(ctx context.Context, id int64, images []models.ImageRef, embeddings []models.Embedding) error
	Delete(ctx context.Context, id int64) error
	DeleteByDepartmentID(ctx context.Context, departmentID int64) (int64, error)
	ApplyPromotions(ctx context.Context, promotions []repositories.Promotion) error
}

// embeddingClient generates face embeddings for reference photos
type embeddingClient interface {
	GenerateEmbeddings(ctx context.Context, images []recognition.Image) (*recognition.EmbeddingsResponse, error)
}

// StudentService handles student enrollment and lifecycle. Enrollment is
// a multi-step pipeline: persist the record, upload reference images,
// generate embeddings, commit the assets. Failures before the record is
// usable roll the earlier steps back; embedding generation alone is best
// effort and never fails an enrollment.
type StudentService struct {
	students   studentStore
	recognizer embeddingClient
	store      blobstore.Store
	authorizer *authz.Authorizer
}

// NewStudentService creates a new student service
func NewStudentService(students studentStore, recognizer embeddingClient, store blobstore.Store, authorizer *authz.Authorizer) *StudentService {
	return &StudentService{
		students:   students,
		recognizer: recognizer,
		store:      store,
		authorizer: authorizer,
	}
}

// CreateStudent enrolls a student with reference photos
func (s *StudentService) CreateStudent(ctx context.Context, actor authz.Actor, departmentID int64, req *dto.CreateStudentRequest, files []*multipart.FileHeader) (*models.Student, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID)
	if err != nil {
		return nil, err
	}

	if req.Semester > department.TotalSemesters {
		return nil, apperrors.NewValidationError("semester exceeds the department's total semesters")
	}
	if err := validation.ValidateImageFiles(files); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	uploads, err := readUploadedFiles(files)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	student := &models.Student{
		DepartmentID: department.ID,
		Name:         req.Name,
		RollNumber:   req.RollNumber,
		Division:     req.Division,
		Batch:        req.Batch,
		Email:        req.Email,
		Semester:     req.Semester,
		Images:       []models.ImageRef{},
		Embeddings:   []models.Embedding{},
	}

	var (
		images     []models.ImageRef
		embeddings []models.Embedding
	)

	pipeline := saga.New(logger.WithField("pipeline", "student-enrollment"))
	err = pipeline.Execute(ctx,
		saga.Step{
			Name: "persist-student",
			Run: func(ctx context.Context) error {
				return s.students.Create(ctx, student)
			},
			Undo: func(ctx context.Context) error {
				return s.students.Delete(ctx, student.ID)
			},
		},
		saga.Step{
			Name: "upload-images",
			Run: func(ctx context.Context) error {
				uploaded, err := s.uploadStudentImages(ctx, student.RollNumber, uploads)
				images = uploaded
				return err
			},
			Undo: func(ctx context.Context) error {
				return s.deleteImages(ctx, images)
			},
		},
		saga.Step{
			Name: "generate-embeddings",
			Run: func(ctx context.Context) error {
				resp, err := s.recognizer.GenerateEmbeddings(ctx, uploads)
				if err != nil {
					// The record is still useful without embeddings; they
					// can be regenerated by re-uploading photos later.
					logger.Warn().Err(err).Str("rollNumber", student.RollNumber).Msg("Embedding generation failed, enrolling without embeddings")
					embeddings = []models.Embedding{}
					return nil
				}
				embeddings = resp.Embeddings
				return nil
			},
		},
		saga.Step{
			Name: "commit-assets",
			Run: func(ctx context.Context) error {
				return s.students.UpdateAssets(ctx, student.ID, images, embeddings)
			},
		},
	)
	if err != nil {
		return nil, err
	}

	student.Images = images
	student.Embeddings = embeddings

	logger.Info().Int64("studentID", student.ID).Str("rollNumber", student.RollNumber).Int("embeddings", len(embeddings)).Msg("Student enrolled")
	return student, nil
}

// uploadStudentImages stores reference photos concurrently. On any
// failure the successful uploads are reported back so the caller's undo
// can remove them.
func (s *StudentService) uploadStudentImages(ctx context.Context, rollNumber string, uploads []recognition.Image) ([]models.ImageRef, error) {
	slots := make([]*models.ImageRef, len(uploads))

	g, gctx := errgroup.WithContext(ctx)
	for i, upload := range uploads {
		g.Go(func() error {
			key := blobstore.StudentKey(rollNumber, blobstore.ObjectName(upload.Name))
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

func (s *StudentService) deleteImages(ctx context.Context, images []models.ImageRef) error {
	var lastErr error
	for _, image := range images {
		if err := s.store.Delete(ctx, image.Key); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// GetStudent retrieves a student within the actor's scope
func (s *StudentService) GetStudent(ctx context.Context, actor authz.Actor, id int64) (*models.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.authorizer.ResolveDepartment(ctx, actor, student.DepartmentID); err != nil {
		return nil, err
	}
	return student, nil
}

// ListStudents retrieves students of a department matching the filter
func (s *StudentService) ListStudents(ctx context.Context, actor authz.Actor, departmentID int64, req *dto.StudentFilterRequest) ([]*models.Student, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID)
	if err != nil {
		return nil, err
	}

	filter := repositories.StudentFilter{IsAlumni: &req.IsAlumni}
	if req.Division != nil {
		filter.Division = *req.Division
	}
	if req.Batch != nil {
		filter.Batch = *req.Batch
	}
	if req.Semester != nil {
		filter.Semester = *req.Semester
	}

	return s.students.List(ctx, department.ID, filter)
}

// UpdateStudent updates a student's profile fields
func (s *StudentService) UpdateStudent(ctx context.Context, actor authz.Actor, id int64, req *dto.UpdateStudentRequest) (*models.Student, error) {
	student, err := s.GetStudent(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.Division != nil {
		student.Division = *req.Division
	}
	if req.Email != nil {
		student.Email = *req.Email
	}
	if req.Semester != nil {
		student.Semester = *req.Semester
	}
	if req.Batch != nil {
		student.Batch = req.Batch
	}

	if err := s.students.Update(ctx, student); err != nil {
		return nil, err
	}
	return student, nil
}

// DeleteStudent removes a student and their stored reference images
func (s *StudentService) DeleteStudent(ctx context.Context, actor authz.Actor, id int64) error {
	student, err := s.GetStudent(ctx, actor, id)
	if err != nil {
		return err
	}

	if err := s.students.Delete(ctx, student.ID); err != nil {
		return err
	}

	for _, image := range student.Images {
		if err := s.store.Delete(ctx, image.Key); err != nil {
			logger.Warn().Err(err).Str("key", image.Key).Msg("Failed to delete student image")
		}
	}
	return nil
}

// DeleteAllStudents removes every student of a department together with
// their stored reference images.
func (s *StudentService) DeleteAllStudents(ctx context.Context, actor authz.Actor, departmentID int64) (int64, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID)
	if err != nil {
		return 0, err
	}

	students, err := s.students.List(ctx, department.ID, repositories.StudentFilter{})
	if err != nil {
		return 0, err
	}

	deleted, err := s.students.DeleteByDepartmentID(ctx, department.ID)
	if err != nil {
		return 0, err
	}

	for _, student := range students {
		for _, image := range student.Images {
			if err := s.store.Delete(ctx, image.Key); err != nil {
				logger.Warn().Err(err).Str("key", image.Key).Msg("Failed to delete student image")
			}
		}
	}

	logger.Info().Int64("departmentID", department.ID).Int64("students", deleted).Msg("Students deleted")
	return deleted, nil
}

// PromoteStudents advances every active student of a department by one
// semester. Students moving past the department's final semester become
// alumni; their counter still advances, so the record shows how far past
// graduation they are. The whole batch commits in one transaction, so a
// failed run changes nothing and the operation can be retried.
func (s *StudentService) PromoteStudents(ctx context.Context, actor authz.Actor, departmentID int64) (*dto.PromotionResponse, error) {
	department, err := s.authorizer.ResolveDepartment(ctx, actor, departmentID)
	if err != nil {
		return nil, err
	}

	active := false
	students, err := s.students.List(ctx, department.ID, repositories.StudentFilter{IsAlumni: &active})
	if err != nil {
		return nil, err
	}

	var (
		promotions []repositories.Promotion
		promoted   int
		alumni     int
	)
	for _, student := range students {
		next := student.Semester + 1
		graduates := next > department.TotalSemesters
		promotions = append(promotions, repositories.Promotion{
			StudentID: student.ID,
			Semester:  next,
			IsAlumni:  graduates,
		})
		if graduates {
			alumni++
		} else {
			promoted++
		}
	}

	if err := s.students.ApplyPromotions(ctx, promotions); err != nil {
		return nil, err
	}

	logger.Info().Int64("departmentID", department.ID).Int("promoted", promoted).Int("alumni", alumni).Msg("Promotion batch applied")
	return &dto.PromotionResponse{
		PromotedCount: promoted,
		AlumniCount:   alumni,
	}, nil
}
