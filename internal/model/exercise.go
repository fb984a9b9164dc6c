package model

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Exercise is one logged activity. It references its user by id.
type Exercise struct {
	ID          string
	UserID      string
	Description string
	Duration    Minutes
	Date        Date
	CreatedAt   time.Time
}

// Minutes is an exercise duration. Input that does not start with an
// integer is kept as an invalid value and rendered as JSON null.
type Minutes struct {
	Value int64
	Valid bool
}

// ParseMinutes reads the leading integer of s, ignoring anything after it
// ("30" and "30min" both give 30). Surrounding whitespace is skipped.
func ParseMinutes(s string) Minutes {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return Minutes{}
	}

	v, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return Minutes{}
	}
	return Minutes{Value: v, Valid: true}
}

func (m Minutes) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return strconv.AppendInt(nil, m.Value, 10), nil
}

// FlexString accepts a JSON string or a JSON number and keeps its text
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexString(n.String())
		return nil
	}
}

// CreateExerciseRequest is the body of POST /api/users/{id}/exercises
type CreateExerciseRequest struct {
	Description string     `json:"description" validate:"required"`
	Duration    FlexString `json:"duration" validate:"required"`
	Date        string     `json:"date"`
}

// ExerciseResponse is returned after an exercise is stored. ID is the user's id.
type ExerciseResponse struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Description string  `json:"description"`
	Duration    Minutes `json:"duration"`
	Date        string  `json:"date"`
}

// LogQuery narrows a user's exercise log. Zero values mean unbounded.
type LogQuery struct {
	From  Date
	To    Date
	Limit int
}

// LogEntry is one exercise in a log response
type LogEntry struct {
	Description string  `json:"description"`
	Duration    Minutes `json:"duration"`
	Date        string  `json:"date"`
}

// LogResponse is returned by GET /api/users/{id}/logs
type LogResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}
