package notification

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
)

var (
	ErrNotFound = core.NewNotFoundError("notification")

	errNoTarget = errors.New("notification without audience or recipients")
)

type (
	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		QueryNotifications(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error)
		GetNotification(ctx context.Context, id string) (Notification, error)
		// MarkNotificationRead adds userID to the readers in one step, unless it is there already.
		MarkNotificationRead(ctx context.Context, id, userID string, at time.Time) (Notification, error)
		DeleteNotification(ctx context.Context, id string) error
	}

	Service struct {
		repo     Repository
		users    *user.Service
		validate *validator.Validate
		mailSvc  core.EmailService
		events   core.EventPublisher
		logger   core.Logger
	}
)

func NewService(
	repo Repository,
	users *user.Service,
	validate *validator.Validate,
	mailSvc core.EmailService,
	events core.EventPublisher,
	logger core.Logger,
) *Service {
	return &Service{repo: repo, users: users, validate: validate, mailSvc: mailSvc, events: events, logger: logger}
}

// Create sends a notification from the user createdBy to the audience roles and recipients.
func (svc *Service) Create(ctx context.Context, createdBy string, nn NewNotification) (Notification, error) {
	nn.Clean()
	if err := svc.validate.Struct(nn); err != nil {
		return Notification{}, err
	}
	if len(nn.Audience) == 0 && len(nn.RecipientIDs) == 0 {
		return Notification{}, core.NewValidationError(errNoTarget, core.FieldError{
			Field: "audience",
			Error: "an audience or at least one recipient is required",
		})
	}
	recipients, err := svc.users.MapByIDs(ctx, nn.RecipientIDs)
	if err != nil {
		return Notification{}, errors.Wrap(err, "finding recipients")
	}
	for _, id := range nn.RecipientIDs {
		if _, ok := recipients[id]; !ok {
			return Notification{}, core.NewValidationError(user.ErrNotFound, core.FieldError{
				Field: "recipient_ids",
				Error: fmt.Sprintf("user %s not found", id),
			})
		}
	}

	now := time.Now().UTC()
	n, err := svc.repo.CreateNotification(ctx, Notification{
		Title:        nn.Title,
		Message:      nn.Message,
		Priority:     nn.Priority,
		Audience:     nonNil(nn.Audience),
		RecipientIDs: nonNil(nn.RecipientIDs),
		SendEmail:    nn.SendEmail,
		ReadBy:       []string{},
		CreatedBy:    core.NullString(createdBy),
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return Notification{}, errors.Wrap(err, "creating notification")
	}

	if err := svc.events.Publish(ctx, core.TopicNotificationCreated, n.ID, n); err != nil {
		svc.logger.Warn(fmt.Sprintf("publishing %s: %v", core.TopicNotificationCreated, err), err)
	}
	if n.SendEmail {
		if err := svc.sendEmails(ctx, n, recipients); err != nil {
			svc.logger.Error(fmt.Sprintf("emailing notification %s: %v", n.ID, err), err)
		}
	}
	return n, nil
}

func nonNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}

// sendEmails mails the notification to its active recipients and every active user of its audience.
func (svc *Service) sendEmails(ctx context.Context, n Notification, recipients map[string]user.User) error {
	targets := make(map[string]user.User, len(recipients))
	for id, usr := range recipients {
		targets[id] = usr
	}
	if len(n.Audience) > 0 {
		active := true
		users, err := svc.users.Query(ctx, &user.QueryFilter{Roles: n.Audience, IsActive: &active}, nil)
		if err != nil {
			return errors.Wrap(err, "querying audience")
		}
		for _, usr := range users {
			targets[usr.ID] = usr
		}
	}

	messages := make([]*core.EmailMessage, 0, len(targets))
	for _, usr := range targets {
		if !usr.IsActive {
			continue
		}
		messages = append(messages, &core.EmailMessage{
			To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
			Subject:      n.Title,
			TemplateName: "notification",
			TemplateData: map[string]string{
				"Name":     usr.Name,
				"Title":    n.Title,
				"Priority": n.Priority,
				"Message":  n.Message,
			},
		})
	}
	if len(messages) > 0 {
		svc.mailSvc.SendMessages(messages...)
	}
	return nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryNotifications(ctx, filter, ordering)
}

// ForUser lists the notifications targeting usr.
func (svc *Service) ForUser(ctx context.Context, usr user.User, filter *QueryFilter, ordering []core.DBOrdering) ([]Notification, error) {
	if filter == nil {
		filter = new(QueryFilter)
	}
	filter.UserID = usr.ID
	filter.Role = usr.Role
	return svc.Query(ctx, filter, ordering)
}

func (svc *Service) Get(ctx context.Context, id string) (Notification, error) {
	return svc.repo.GetNotification(ctx, id)
}

// MarkRead records that usr read the notification. Marking twice is a no-op.
func (svc *Service) MarkRead(ctx context.Context, id string, usr user.User) (Notification, error) {
	n, err := svc.repo.GetNotification(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if !n.IsFor(usr.ID, usr.Role) {
		return Notification{}, ErrNotFound
	}
	if n.IsReadBy(usr.ID) {
		return n, nil
	}
	marked, err := svc.repo.MarkNotificationRead(ctx, id, usr.ID, time.Now().UTC())
	if err != nil {
		return Notification{}, errors.Wrap(err, "marking notification read")
	}
	return marked, nil
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteNotification(ctx, id)
}
