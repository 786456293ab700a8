package services

import (
	"context"
	"time"

	"stichting-asha/internal/models"
	"stichting-asha/pkg/auth"

	"github.com/sirupsen/logrus"
)

type ActivityWriter interface {
	Insert(ctx context.Context, activity *models.Activity) error
}

type Publisher interface {
	Publish(msgType string, data interface{})
}

// ActivityRecorder appends dashboard activity. Recording is best effort:
// failures are logged and never reach the caller.
type ActivityRecorder struct {
	store     ActivityWriter
	publisher Publisher
	log       logrus.FieldLogger
	timeout   time.Duration
	now       func() time.Time
}

func NewActivityRecorder(store ActivityWriter, publisher Publisher, log logrus.FieldLogger) *ActivityRecorder {
	return &ActivityRecorder{
		store:     store,
		publisher: publisher,
		log:       log,
		timeout:   5 * time.Second,
		now:       time.Now,
	}
}

// Record stores one entry. It is detached from ctx cancellation so a
// client hanging up does not drop the entry.
func (r *ActivityRecorder) Record(ctx context.Context, s *auth.Session, kind models.ActivityType, entityType, entityID, entityName string) {
	activity := &models.Activity{
		Type:            kind,
		EntityType:      entityType,
		EntityID:        entityID,
		EntityName:      entityName,
		PerformedByName: s.DisplayName(),
		CreatedAt:       r.now(),
	}
	if s != nil {
		activity.PerformedBy = s.UserID
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.store.Insert(ctx, activity); err != nil {
		r.log.WithError(err).WithFields(logrus.Fields{
			"type":        kind,
			"entity_type": entityType,
			"entity_id":   entityID,
		}).Warn("failed to record activity")
		return
	}

	if r.publisher != nil {
		r.publisher.Publish("activity", ActivityView{Activity: *activity, Message: activity.Message()})
	}
}

// ActivityView is an activity with its rendered dashboard line.
type ActivityView struct {
	models.Activity
	Message string `json:"message"`
}
