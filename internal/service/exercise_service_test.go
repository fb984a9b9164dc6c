package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cs-tungthanh/fcc-microservices/internal/apperr"
	"github.com/cs-tungthanh/fcc-microservices/internal/model"
	"github.com/cs-tungthanh/fcc-microservices/internal/repository"
)

func setupExerciseService(t *testing.T) *ExerciseService {
	db := setupTestDB(t)
	return NewExerciseService(repository.NewUserRepository(db), repository.NewExerciseRepository(db))
}

func mustCreateUser(t *testing.T, svc *ExerciseService, name string) string {
	t.Helper()
	resp, err := svc.CreateUser(context.Background(), model.CreateUserRequest{Username: name})
	require.NoError(t, err)
	return resp.ID
}

func TestCreateUser_ThenListUsers(t *testing.T) {
	ctx := context.Background()
	svc := setupExerciseService(t)

	before, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, before)

	resp, err := svc.CreateUser(ctx, model.CreateUserRequest{Username: "alice"})
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Username)
	assert.NotEmpty(t, resp.ID)

	other, err := svc.CreateUser(ctx, model.CreateUserRequest{Username: "alice"})
	require.NoError(t, err)
	assert.NotEqual(t, resp.ID, other.ID, "ids are generated per user")

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	matches := 0
	for _, u := range users {
		if u.ID == resp.ID {
			matches++
			assert.Equal(t, "alice", u.Username)
		}
	}
	assert.Equal(t, 1, matches)
}

func TestCreateUser_RequiresUsername(t *testing.T) {
	svc := setupExerciseService(t)

	for _, name := range []string{"", "   "} {
		_, err := svc.CreateUser(context.Background(), model.CreateUserRequest{Username: name})
		assert.True(t, apperr.IsKind(err, apperr.KindValidation), "username %q: %v", name, err)
	}
}

func TestCreateExercise_DefaultsDateToToday(t *testing.T) {
	svc := setupExerciseService(t)
	fixed := time.Date(2024, time.January, 1, 15, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	id := mustCreateUser(t, svc, "alice")

	resp, err := svc.CreateExercise(context.Background(), id, model.CreateExerciseRequest{
		Description: "run",
		Duration:    "30",
		Date:        "",
	})
	require.NoError(t, err)

	assert.Equal(t, id, resp.ID)
	assert.Equal(t, "alice", resp.Username)
	assert.Equal(t, "run", resp.Description)
	assert.Equal(t, model.Minutes{Value: 30, Valid: true}, resp.Duration)
	assert.Equal(t, "Mon Jan 01 2024", resp.Date)
}

func TestCreateExercise_ExplicitDate(t *testing.T) {
	svc := setupExerciseService(t)
	id := mustCreateUser(t, svc, "alice")

	resp, err := svc.CreateExercise(context.Background(), id, model.CreateExerciseRequest{
		Description: "swim",
		Duration:    "45",
		Date:        "1990-01-02",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tue Jan 02 1990", resp.Date)
}

func TestCreateExercise_NonNumericDurationIsKept(t *testing.T) {
	svc := setupExerciseService(t)
	id := mustCreateUser(t, svc, "alice")

	resp, err := svc.CreateExercise(context.Background(), id, model.CreateExerciseRequest{
		Description: "yoga",
		Duration:    "a while",
	})
	require.NoError(t, err)
	assert.False(t, resp.Duration.Valid)
}

func TestCreateExercise_Validation(t *testing.T) {
	svc := setupExerciseService(t)
	id := mustCreateUser(t, svc, "alice")

	tests := []struct {
		name string
		req  model.CreateExerciseRequest
		msg  string
	}{
		{"missing description", model.CreateExerciseRequest{Duration: "10"}, "description is required"},
		{"missing duration", model.CreateExerciseRequest{Description: "run"}, "duration is required"},
		{"bad date", model.CreateExerciseRequest{Description: "run", Duration: "10", Date: "someday"}, "invalid date: expected YYYY-MM-DD"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateExercise(context.Background(), id, tt.req)
			appErr, ok := apperr.As(err)
			require.True(t, ok, "expected AppError, got %v", err)
			assert.Equal(t, apperr.KindValidation, appErr.Kind)
			assert.Equal(t, tt.msg, appErr.Message)
		})
	}
}

func TestCreateExercise_UnknownUser(t *testing.T) {
	svc := setupExerciseService(t)

	_, err := svc.CreateExercise(context.Background(), "no-such-user", model.CreateExerciseRequest{
		Description: "run",
		Duration:    "30",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetLogs_FilterSortLimit(t *testing.T) {
	ctx := context.Background()
	svc := setupExerciseService(t)
	id := mustCreateUser(t, svc, "alice")

	for _, date := range []string{"2024-01-10", "2024-01-01", "2024-01-05", "2024-01-20"} {
		_, err := svc.CreateExercise(ctx, id, model.CreateExerciseRequest{
			Description: "ex " + date,
			Duration:    "20",
			Date:        date,
		})
		require.NoError(t, err)
	}

	all, err := svc.GetLogs(ctx, id, model.LogQuery{})
	require.NoError(t, err)
	assert.Equal(t, "alice", all.Username)
	assert.Equal(t, id, all.ID)
	assert.Equal(t, 4, all.Count)
	assert.Equal(t, []string{"Mon Jan 01 2024", "Fri Jan 05 2024", "Wed Jan 10 2024", "Sat Jan 20 2024"}, logDates(all))

	q, err := ParseLogQuery("2024-01-05", "2024-01-10", "")
	require.NoError(t, err)
	ranged, err := svc.GetLogs(ctx, id, q)
	require.NoError(t, err)
	assert.Equal(t, 2, ranged.Count)
	assert.Len(t, ranged.Log, ranged.Count)
	assert.Equal(t, []string{"Fri Jan 05 2024", "Wed Jan 10 2024"}, logDates(ranged), "bounds are inclusive")

	q, err = ParseLogQuery("", "", "3")
	require.NoError(t, err)
	limited, err := svc.GetLogs(ctx, id, q)
	require.NoError(t, err)
	assert.Equal(t, 3, limited.Count)
	assert.Equal(t, "Mon Jan 01 2024", limited.Log[0].Date)

	q, err = ParseLogQuery("", "", "0")
	require.NoError(t, err)
	unlimited, err := svc.GetLogs(ctx, id, q)
	require.NoError(t, err)
	assert.Equal(t, 4, unlimited.Count)

	q, err = ParseLogQuery("2024-01-02", "", "1")
	require.NoError(t, err)
	combined, err := svc.GetLogs(ctx, id, q)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fri Jan 05 2024"}, logDates(combined))
}

func TestGetLogs_EmptyLogIsArray(t *testing.T) {
	svc := setupExerciseService(t)
	id := mustCreateUser(t, svc, "alice")

	logs, err := svc.GetLogs(context.Background(), id, model.LogQuery{})
	require.NoError(t, err)
	assert.NotNil(t, logs.Log)
	assert.Zero(t, logs.Count)
}

func TestGetLogs_UnknownUser(t *testing.T) {
	svc := setupExerciseService(t)

	_, err := svc.GetLogs(context.Background(), "missing", model.LogQuery{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.GetLogs(context.Background(), "", model.LogQuery{})
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestParseLogQuery(t *testing.T) {
	tests := []struct {
		name     string
		from, to string
		limit    string
		want     model.LogQuery
		wantErr  bool
	}{
		{name: "empty", want: model.LogQuery{}},
		{name: "limit", limit: "5", want: model.LogQuery{Limit: 5}},
		{name: "zero limit", limit: "0", want: model.LogQuery{}},
		{name: "negative limit", limit: "-2", want: model.LogQuery{}},
		{name: "garbage limit", limit: "ten", want: model.LogQuery{}},
		{
			name: "range",
			from: "2024-01-01", to: "2024-02-01",
			want: model.LogQuery{
				From: model.NewDate(2024, time.January, 1),
				To:   model.NewDate(2024, time.February, 1),
			},
		},
		{name: "bad from", from: "soon", wantErr: true},
		{name: "bad to", to: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLogQuery(tt.from, tt.to, tt.limit)
			if tt.wantErr {
				assert.True(t, apperr.IsKind(err, apperr.KindValidation))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func logDates(resp *model.LogResponse) []string {
	out := make([]string, 0, len(resp.Log))
	for _, e := range resp.Log {
		out = append(out, e.Date)
	}
	return out
}
