package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/unique"
)

var (
	// errors
	ErrNotFound = core.NewNotFoundError("user")

	errInvalidValue = "invalid value"
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		// QueryUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of User.Name, User.Email or User.Phone.
		QueryUsers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error)
		GetUser(ctx context.Context, filter GetFilter) (User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		DeleteUsers(ctx context.Context, ids ...string) error
	}

	Service struct {
		repo     Repository
		checker  unique.Checker
		policy   *unique.Policy
		validate *validator.Validate
		mailSvc  core.EmailService
		tokens   TokenGenerator
		conf     *core.Config
	}
)

func NewService(
	repo Repository,
	checker unique.Checker,
	policy *unique.Policy,
	validate *validator.Validate,
	mailSvc core.EmailService,
	conf *core.Config,
) *Service {
	return &Service{
		repo:     repo,
		checker:  checker,
		policy:   policy,
		validate: validate,
		mailSvc:  mailSvc,
		tokens:   NewTokenGenerator(conf),
		conf:     conf,
	}
}

func (svc *Service) Tokens() TokenGenerator { return svc.tokens }

// Validate cleans and validates nu, then applies the uniqueness policy.
func (svc *Service) Validate(ctx context.Context, nu *NewUser) error {
	nu.Clean()
	if err := svc.validate.Struct(nu); err != nil {
		return err
	}
	return svc.policy.Check(ctx, svc.checker, unique.EntityUser, map[string]string{"email": nu.Email}, "")
}

// Create validates nu and creates the User. Profile services call it inside their transaction.
func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	if err := svc.Validate(ctx, &nu); err != nil {
		return User{}, err
	}

	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		Phone:     nu.Phone,
		Address:   nu.Address,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]User, error) {
	if filter != nil {
		filter.Clean()
	}
	if err := core.CheckOrdering(ordering, OrderingFields...); err != nil {
		return nil, err
	}
	return svc.repo.QueryUsers(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{ID: id})
}

// MapByIDs returns the users with the given IDs, keyed by ID.
func (svc *Service) MapByIDs(ctx context.Context, ids []string) (map[string]User, error) {
	byID := make(map[string]User, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	users, err := svc.repo.QueryUsers(ctx, &QueryFilter{IDs: ids}, nil)
	if err != nil {
		return nil, err
	}
	for _, usr := range users {
		byID[usr.ID] = usr
	}
	return byID, nil
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUser(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *Service) Update(ctx context.Context, id string, uu UpdateUser) (User, error) {
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}

	uu.Clean()
	if err := svc.validate.Struct(uu); err != nil {
		return User{}, err
	}
	uu.apply(&usr)
	if err := svc.policy.Check(ctx, svc.checker, unique.EntityUser, usr.UniqueValues(), usr.ID); err != nil {
		return User{}, err
	}

	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "hashing password")
		}
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// SetPassword sets a password without applying the password policy (admin CLI).
func (svc *Service) SetPassword(ctx context.Context, usr User, pwd string) (User, error) {
	if err := usr.SetPassword(pwd); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	usr.LastLogin = &now
	return svc.repo.UpdateUser(ctx, usr)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	return svc.repo.DeleteUsers(ctx, ids...)
}

// RequestPasswordReset emails a password reset link to the active user owning email.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !usr.IsActive {
		return nil
	}
	token, err := svc.tokens.MakeToken(usr)
	if err != nil {
		return errors.Wrap(err, "making password reset token")
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Password Reset",
		TemplateName: "password_reset",
		TemplateData: map[string]string{
			"Name":  usr.Name,
			"UID":   EncodeUID(usr),
			"Token": token,
		},
	})
	return nil
}

func (svc *Service) ResetPassword(ctx context.Context, data ResetUserPassword) error {
	if err := svc.validate.Struct(data); err != nil {
		return err
	}

	invalidUID := core.NewValidationError(errors.New("invalid uid"), core.FieldError{Field: "uid", Error: errInvalidValue})
	id, err := decodeUID(data.UID)
	if err != nil {
		return invalidUID
	}
	usr, err := svc.GetByID(ctx, id)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return invalidUID
		}
		return errors.Wrap(err, "finding user by ID")
	}

	if err := svc.tokens.verifyToken(usr, data.Token); err != nil {
		if err == errInvalidToken || err == errTokenExpired {
			return core.NewValidationError(err, core.FieldError{Field: "token", Error: errInvalidValue})
		}
		return errors.Wrap(err, "verifying token")
	}

	if _, err := svc.SetPassword(ctx, usr, data.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	return nil
}

// AccountCreatedData is rendered into the account created email.
type AccountCreatedData struct {
	Name       string
	Email      string
	Role       string
	Identifier string
}

// SendAccountCreatedMail lets usr know an account was opened for them.
func (svc *Service) SendAccountCreatedMail(usr User, identifier string) {
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Your account",
		TemplateName: "account_created",
		TemplateData: AccountCreatedData{Name: usr.Name, Email: usr.Email, Role: usr.Role, Identifier: identifier},
	})
}
