package forms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	"pokedoro/internal/models"
)

var (
	ErrUnknownField       = errors.New("unknown form field")
	ErrSubmissionInFlight = errors.New("a login submission is already in flight")
)

// Submitter sends validated credentials to the authentication endpoint.
type Submitter interface {
	Login(ctx context.Context, creds models.Credentials) (*models.LoginResponse, error)
}

// SuccessFunc runs once after a submission succeeds.
type SuccessFunc func(ctx context.Context, resp *models.LoginResponse) error

// StatusError is implemented by submission errors that map to a status code and
// a message that can be shown to the user.
type StatusError interface {
	error
	StatusCode() int
	UserMessage() string
}

// LoginForm holds the field values of one login form and drives its submissions.
// Field edits re-validate immediately. Only one submission may be in flight at a time.
type LoginForm struct {
	submitter Submitter
	onSuccess SuccessFunc

	mu       sync.Mutex
	values   models.Credentials
	errors   map[string]string
	status   models.Status
	snapshot models.Credentials
	response *models.LoginResponse

	inFlight atomic.Bool
}

func NewLoginForm(submitter Submitter, onSuccess SuccessFunc) *LoginForm {
	return &LoginForm{
		submitter: submitter,
		onSuccess: onSuccess,
		errors:    map[string]string{},
		status:    models.Status{Kind: models.StatusIdle},
	}
}

// SetField applies one edit and returns the field errors after re-validation.
func (f *LoginForm) SetField(name, value string) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch name {
	case FieldEmail:
		f.values.Email = value
	case FieldPassword:
		f.values.Password = value
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
	}

	f.errors = fieldErrors(Validate(f.values))
	return copyErrors(f.errors), nil
}

// Fill sets both fields at once, as a full form post does.
func (f *LoginForm) Fill(creds models.Credentials) map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.values = creds
	f.errors = fieldErrors(Validate(f.values))
	return copyErrors(f.errors)
}

func (f *LoginForm) Errors() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return copyErrors(f.errors)
}

func (f *LoginForm) Values() models.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.values
}

func (f *LoginForm) Status() models.Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Response returns the endpoint's payload for the latest successful submission.
func (f *LoginForm) Response() *models.LoginResponse {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.response
}

// Pending reports whether the submit control should be disabled.
func (f *LoginForm) Pending() bool {
	return f.inFlight.Load()
}

// Snapshot returns the credentials captured by the latest submission.
func (f *LoginForm) Snapshot() models.Credentials {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshot
}

// Submit validates the current values and, if they pass, sends a snapshot of them
// through the submitter. The success continuation runs directly on the result,
// never on a later observation of the status.
func (f *LoginForm) Submit(ctx context.Context) (*models.LoginResponse, error) {
	f.mu.Lock()
	creds := f.values
	err := Validate(creds)
	f.errors = fieldErrors(err)
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}

	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrSubmissionInFlight
	}
	defer f.inFlight.Store(false)

	f.mu.Lock()
	f.snapshot = creds
	f.status = models.Status{Kind: models.StatusPending}
	f.response = nil
	f.mu.Unlock()

	resp, err := f.submitter.Login(ctx, creds)
	if err != nil {
		f.setStatus(errorStatus(err))
		return nil, err
	}

	f.mu.Lock()
	f.status = models.Status{Kind: models.StatusSuccess, Code: http.StatusOK}
	f.response = resp
	f.mu.Unlock()
	if f.onSuccess != nil {
		if err := f.onSuccess(ctx, resp); err != nil {
			return resp, fmt.Errorf("after login: %w", err)
		}
	}
	return resp, nil
}

func (f *LoginForm) setStatus(s models.Status) {
	f.mu.Lock()
	f.status = s
	f.mu.Unlock()
}

func errorStatus(err error) models.Status {
	var serr StatusError
	if errors.As(err, &serr) {
		return models.Status{Kind: models.StatusError, Code: serr.StatusCode(), Message: serr.UserMessage()}
	}
	return models.Status{Kind: models.StatusError}
}

func fieldErrors(err error) map[string]string {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return copyErrors(verr.Fields)
	}
	return map[string]string{}
}

func copyErrors(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
