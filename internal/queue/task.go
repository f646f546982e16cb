package queue

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/mail"
	"strconv"
	"strings"
)

// ErrMalformedTask reports a message body that is not a JSON object.
var ErrMalformedTask = errors.New("malformed task message")

// S3Location names the S3 objects a task operates on.
type S3Location struct {
	Bucket      string `json:"bucket"`
	ZipKey      string `json:"zip_key"`
	MetadataKey string `json:"metadata_key"`
}

// OrganizationID accepts JSON numbers and numeric strings. Integral
// fractions such as 12.0 are accepted; 12.5 is not.
type OrganizationID int64

func (o *OrganizationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(strings.TrimSpace(s))
	}
	v, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		f, ferr := strconv.ParseFloat(string(data), 64)
		if ferr != nil || f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
			return fmt.Errorf("organization_id must be an integer: %w", err)
		}
		v = int64(f)
	}
	*o = OrganizationID(v)
	return nil
}

// Task is the payload of an export request message.
type Task struct {
	S3             S3Location     `json:"s3"`
	OrganizationID OrganizationID `json:"organization_id"`
	UserEmail      string         `json:"user_email"`
}

// TaskValidationError lists every schema problem found in a task.
type TaskValidationError struct {
	Problems []string
}

func (e *TaskValidationError) Error() string {
	return "task does not match schema: " + strings.Join(e.Problems, "; ")
}

type rawTask struct {
	S3             *S3Location     `json:"s3"`
	OrganizationID *OrganizationID `json:"organization_id"`
	UserEmail      *string         `json:"user_email"`
}

// DecodeTask parses and validates a message body.
func DecodeTask(body []byte) (Task, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' || !json.Valid(trimmed) {
		return Task{}, ErrMalformedTask
	}

	var raw rawTask
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return Task{}, &TaskValidationError{Problems: []string{err.Error()}}
	}

	var problems []string
	task := Task{}
	if raw.S3 == nil {
		problems = append(problems, "s3 is required")
	} else {
		task.S3 = *raw.S3
		if strings.TrimSpace(task.S3.Bucket) == "" {
			problems = append(problems, "s3.bucket is required")
		}
		if strings.TrimSpace(task.S3.ZipKey) == "" {
			problems = append(problems, "s3.zip_key is required")
		}
		if strings.TrimSpace(task.S3.MetadataKey) == "" {
			problems = append(problems, "s3.metadata_key is required")
		}
	}
	if raw.OrganizationID == nil {
		problems = append(problems, "organization_id is required")
	} else {
		task.OrganizationID = *raw.OrganizationID
		if task.OrganizationID <= 0 {
			problems = append(problems, "organization_id must be positive")
		}
	}
	if raw.UserEmail == nil || strings.TrimSpace(*raw.UserEmail) == "" {
		problems = append(problems, "user_email is required")
	} else {
		task.UserEmail = strings.TrimSpace(*raw.UserEmail)
		if _, err := mail.ParseAddress(task.UserEmail); err != nil {
			problems = append(problems, "user_email is not a valid address")
		}
	}
	if len(problems) > 0 {
		return Task{}, &TaskValidationError{Problems: problems}
	}
	return task, nil
}
