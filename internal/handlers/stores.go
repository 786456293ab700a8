package handlers

import (
	"context"
	"time"

	"stichting-asha/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type EventRepository interface {
	List(ctx context.Context) ([]models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Insert(ctx context.Context, event *models.Event) error
	Replace(ctx context.Context, event *models.Event) error
	Delete(ctx context.Context, id string) error
}

type OccurrenceRepository interface {
	InsertMany(ctx context.Context, events []models.Event) error
	ListBySeries(ctx context.Context, seriesID string) ([]models.Event, error)
	UpdateSeries(ctx context.Context, seriesID string, fields models.SharedFields) (int64, error)
	DeleteSeries(ctx context.Context, seriesID string) (int64, error)
}

type SeriesRepository interface {
	Get(ctx context.Context, id string) (*models.Series, error)
	Insert(ctx context.Context, series *models.Series) error
	Replace(ctx context.Context, series *models.Series) error
	Delete(ctx context.Context, id string) error
}

type ProjectRepository interface {
	List(ctx context.Context) ([]models.Project, error)
	Get(ctx context.Context, id string) (*models.Project, error)
	Insert(ctx context.Context, project *models.Project) error
	Replace(ctx context.Context, project *models.Project) error
	Delete(ctx context.Context, id string) error
}

type VolunteerRepository interface {
	List(ctx context.Context, status string) ([]models.Volunteer, error)
	Get(ctx context.Context, id string) (*models.Volunteer, error)
	Insert(ctx context.Context, volunteer *models.Volunteer) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	SetStatus(ctx context.Context, id string, status models.VolunteerStatus) (*models.Volunteer, error)
	Delete(ctx context.Context, id string) error
}

type NoticeRepository interface {
	List(ctx context.Context) ([]models.Notice, error)
	Active(ctx context.Context, now time.Time) ([]models.Notice, error)
	Get(ctx context.Context, id string) (*models.Notice, error)
	Insert(ctx context.Context, notice *models.Notice) error
	Replace(ctx context.Context, notice *models.Notice) error
	Delete(ctx context.Context, id string) error
}

type NewsletterRepository interface {
	List(ctx context.Context, field string, ascending bool) ([]models.NewsletterPost, error)
	Get(ctx context.Context, id string) (*models.NewsletterPost, error)
	Insert(ctx context.Context, post *models.NewsletterPost) error
	Replace(ctx context.Context, post *models.NewsletterPost) error
	Delete(ctx context.Context, id string) error
}

type ActivityRepository interface {
	Recent(ctx context.Context, limit int) ([]models.Activity, error)
}

type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, email, hash string) error
}

type ResetRepository interface {
	Insert(ctx context.Context, reset *models.PasswordReset) error
	FindValid(ctx context.Context, token string, now time.Time) (*models.PasswordReset, error)
	Claim(ctx context.Context, token string, now time.Time) (*models.PasswordReset, error)
	Release(ctx context.Context, id primitive.ObjectID) error
}
