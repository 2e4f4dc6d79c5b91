/*
Package worker is the staff directory. Workers are assigned to orders and can
sign in by phone like clients.
*/
package worker

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"workshop/domain/shared"

	"github.com/google/uuid"
)

var (
	passSeriesRegex = regexp.MustCompile(`^[0-9]{4}$`)
	passNumberRegex = regexp.MustCompile(`^[0-9]{6}$`)
)

// Worker aggregate root.
type Worker struct {
	id             string
	name           shared.PersonName
	phone          shared.Phone
	email          string
	username       string
	passwordDigest string
	position       string
	passSeries     string
	passNumber     string
	bornDate       time.Time
	hiredAt        time.Time
	version        int

	shared.EventRecorder
}

// Profile holds the editable fields of a worker. Last name is optional.
type Profile struct {
	First      string
	Last       string
	Middle     string
	Phone      string
	Email      string
	Username   string
	Position   string
	PassSeries string
	PassNumber string
	BornDate   time.Time
}

func NewWorker(p Profile, password string, hasher shared.PasswordHasher) (*Worker, error) {
	w := &Worker{hiredAt: time.Now()}
	if err := w.apply(p); err != nil {
		return nil, err
	}
	if err := w.setPassword(password, hasher); err != nil {
		return nil, err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("failed to generate worker ID: %w", err)
	}
	w.id = id.String()

	w.Record(NewWorkerCreatedEvent(w))
	return w, nil
}

func (w *Worker) apply(p Profile) error {
	name := shared.PersonName{
		First:  strings.TrimSpace(p.First),
		Last:   strings.TrimSpace(p.Last),
		Middle: strings.TrimSpace(p.Middle),
	}
	if field, err := name.Validate(false); err != nil {
		return shared.NewValidationError("worker", field, err.Error())
	}

	phone, err := shared.NewPhone(p.Phone)
	if err != nil {
		return shared.NewValidationError("worker", "phone", err.Error())
	}
	email, err := shared.ValidateEmail(p.Email)
	if err != nil {
		return shared.NewValidationError("worker", "email", err.Error())
	}
	username := strings.TrimSpace(p.Username)
	if err := shared.ValidateUsername(username); err != nil {
		return shared.NewValidationError("worker", "username", err.Error())
	}

	position := strings.TrimSpace(p.Position)
	if position == "" {
		return shared.NewValidationError("worker", "position", "cannot be empty")
	}
	if utf8.RuneCountInString(position) > 100 {
		return shared.NewValidationError("worker", "position", "must be at most 100 characters")
	}

	if p.PassSeries != "" && !passSeriesRegex.MatchString(p.PassSeries) {
		return shared.NewValidationError("worker", "pass_series", "must be 4 digits")
	}
	if p.PassNumber != "" && !passNumberRegex.MatchString(p.PassNumber) {
		return shared.NewValidationError("worker", "pass_number", "must be 6 digits")
	}
	if !p.BornDate.IsZero() && p.BornDate.After(time.Now()) {
		return shared.NewValidationError("worker", "born_date", "cannot be in the future")
	}

	w.name = name
	w.phone = phone
	w.email = email
	w.username = username
	w.position = position
	w.passSeries = p.PassSeries
	w.passNumber = p.PassNumber
	w.bornDate = p.BornDate
	return nil
}

func (w *Worker) setPassword(password string, hasher shared.PasswordHasher) error {
	if err := shared.ValidatePassword(password); err != nil {
		return shared.NewValidationError("worker", "password", err.Error())
	}
	digest, err := hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	w.passwordDigest = digest
	return nil
}

func (w *Worker) UpdateProfile(p Profile) error {
	if err := w.apply(p); err != nil {
		return err
	}
	w.Record(NewWorkerUpdatedEvent(w))
	return nil
}

func (w *Worker) ChangePassword(password string, hasher shared.PasswordHasher) error {
	if err := w.setPassword(password, hasher); err != nil {
		return err
	}
	w.Record(NewWorkerUpdatedEvent(w))
	return nil
}

func (w *Worker) CheckPassword(password string, hasher shared.PasswordHasher) bool {
	return w.passwordDigest != "" && hasher.Verify(password, w.passwordDigest)
}

func (w *Worker) MarkRemoved() {
	w.Record(NewWorkerDeletedEvent(w.id))
}

func (w *Worker) IncrementVersionForSave() { w.version++ }

func (w *Worker) ID() string              { return w.id }
func (w *Worker) Name() shared.PersonName { return w.name }
func (w *Worker) Phone() shared.Phone     { return w.phone }
func (w *Worker) Email() string           { return w.email }
func (w *Worker) Username() string        { return w.username }
func (w *Worker) PasswordDigest() string  { return w.passwordDigest }
func (w *Worker) Position() string        { return w.position }
func (w *Worker) PassSeries() string      { return w.passSeries }
func (w *Worker) PassNumber() string      { return w.passNumber }
func (w *Worker) BornDate() time.Time     { return w.bornDate }
func (w *Worker) HiredAt() time.Time      { return w.hiredAt }
func (w *Worker) Version() int            { return w.version }

type ReconstructionDTO struct {
	ID             string
	First          string
	Last           string
	Middle         string
	Phone          string
	Email          string
	Username       string
	PasswordDigest string
	Position       string
	PassSeries     string
	PassNumber     string
	BornDate       time.Time
	HiredAt        time.Time
	Version        int
}

func RebuildFromDTO(dto ReconstructionDTO) *Worker {
	return &Worker{
		id:             dto.ID,
		name:           shared.PersonName{First: dto.First, Last: dto.Last, Middle: dto.Middle},
		phone:          shared.RestorePhone(dto.Phone),
		email:          dto.Email,
		username:       dto.Username,
		passwordDigest: dto.PasswordDigest,
		position:       dto.Position,
		passSeries:     dto.PassSeries,
		passNumber:     dto.PassNumber,
		bornDate:       dto.BornDate,
		hiredAt:        dto.HiredAt,
		version:        dto.Version,
	}
}

var _ shared.AggregateRoot = (*Worker)(nil)
