package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cs-tungthanh/fcc-microservices/internal/apperr"
	"github.com/cs-tungthanh/fcc-microservices/internal/model"
	"github.com/cs-tungthanh/fcc-microservices/internal/repository"
)

var ErrUserNotFound = errors.New("user not found")

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
}

// ExerciseStore persists exercises and answers filtered log queries
type ExerciseStore interface {
	Create(ctx context.Context, ex *model.Exercise) error
	ListByUser(ctx context.Context, userID string, q model.LogQuery) ([]model.Exercise, error)
}

// ExerciseService handles users and their exercise logs
type ExerciseService struct {
	users     UserStore
	exercises ExerciseStore
	now       func() time.Time
}

// NewExerciseService creates a new service instance
func NewExerciseService(users UserStore, exercises ExerciseStore) *ExerciseService {
	return &ExerciseService{
		users:     users,
		exercises: exercises,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// CreateUser stores a new user under a generated id
func (s *ExerciseService) CreateUser(ctx context.Context, req model.CreateUserRequest) (*model.CreateUserResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" {
		return nil, apperr.MissingField("username")
	}

	user := &model.User{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	return &model.CreateUserResponse{Username: user.Username, ID: user.ID}, nil
}

func (s *ExerciseService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// CreateExercise appends an exercise to an existing user's log
func (s *ExerciseService) CreateExercise(ctx context.Context, userID string, req model.CreateExerciseRequest) (*model.ExerciseResponse, error) {
	// ============ STEP 1: Validation ============
	if strings.TrimSpace(req.Description) == "" {
		return nil, apperr.MissingField("description")
	}
	if strings.TrimSpace(string(req.Duration)) == "" {
		return nil, apperr.MissingField("duration")
	}

	date := model.DateOf(s.now())
	if strings.TrimSpace(req.Date) != "" {
		parsed, err := model.ParseDate(req.Date)
		if err != nil {
			return nil, apperr.InvalidField("date", "expected YYYY-MM-DD")
		}
		date = parsed
	}

	// ============ STEP 2: Resolve the owner ============
	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	// ============ STEP 3: Create the record ============
	ex := &model.Exercise{
		ID:          uuid.NewString(),
		UserID:      user.ID,
		Description: req.Description,
		Duration:    model.ParseMinutes(string(req.Duration)),
		Date:        date,
		CreatedAt:   s.now(),
	}
	if err := s.exercises.Create(ctx, ex); err != nil {
		return nil, err
	}

	return &model.ExerciseResponse{
		ID:          user.ID,
		Username:    user.Username,
		Description: ex.Description,
		Duration:    ex.Duration,
		Date:        ex.Date.Display(),
	}, nil
}

// GetLogs returns the user's exercises filtered by q
func (s *ExerciseService) GetLogs(ctx context.Context, userID string, q model.LogQuery) (*model.LogResponse, error) {
	user, err := s.lookupUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	exercises, err := s.exercises.ListByUser(ctx, user.ID, q)
	if err != nil {
		return nil, err
	}

	log := make([]model.LogEntry, 0, len(exercises))
	for _, ex := range exercises {
		log = append(log, model.LogEntry{
			Description: ex.Description,
			Duration:    ex.Duration,
			Date:        ex.Date.Display(),
		})
	}

	return &model.LogResponse{
		ID:       user.ID,
		Username: user.Username,
		Count:    len(log),
		Log:      log,
	}, nil
}

// ParseLogQuery reads the from/to/limit query parameters. Empty values are
// unbounded; a negative or non-numeric limit also means no limit.
func ParseLogQuery(from, to, limit string) (model.LogQuery, error) {
	var q model.LogQuery

	if strings.TrimSpace(from) != "" {
		d, err := model.ParseDate(from)
		if err != nil {
			return q, apperr.InvalidField("from", "expected YYYY-MM-DD")
		}
		q.From = d
	}
	if strings.TrimSpace(to) != "" {
		d, err := model.ParseDate(to)
		if err != nil {
			return q, apperr.InvalidField("to", "expected YYYY-MM-DD")
		}
		q.To = d
	}
	if n, err := strconv.Atoi(strings.TrimSpace(limit)); err == nil && n > 0 {
		q.Limit = n
	}

	return q, nil
}

func (s *ExerciseService) lookupUser(ctx context.Context, userID string) (*model.User, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUserNotFound
	}
	user, err := s.users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	return user, nil
}
