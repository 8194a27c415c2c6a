package submitapplication

import (
	"errors"
	"io"
	"regexp"

	"hr-backoffice/internal/models"
)

const SuccessMessage = "Application submitted successfully!"

type Input struct {
	JobID         int64         `json:"jobId"`
	ApplicantName string        `json:"name" form:"name"`
	Email         string        `json:"email" form:"email"`
	Phone         string        `json:"phone" form:"phone"`
	Resume        *ResumeUpload `json:"-"`
}

// ResumeUpload is an optional uploaded file. Size is the size the client
// declared; the content is still capped while it is copied.
type ResumeUpload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

type Output struct {
	Application *models.Application `json:"application"`
	Message     string              `json:"message"`
}

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	errResumeTooLarge = errors.New("RESUME_TOO_LARGE")
)

// cappedReader fails once more than limit bytes have been read.
type cappedReader struct {
	r     io.Reader
	limit int64
	read  int64
}

func (c *cappedReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.read += int64(n)
	if c.read > c.limit {
		return n, errResumeTooLarge
	}
	return n, err
}
