package kodekloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

const (
	// DefaultBaseURL is the learn api
	DefaultBaseURL = "https://learn-api.kodekloud.com"
	// DefaultQuizBaseURL is the quiz api, it needs no session
	DefaultQuizBaseURL = "https://mcq-backend-main.kodekloud.com"
	// DefaultReferer is sent to media hosts that check the embedding page
	DefaultReferer = "https://learn.kodekloud.com/"
	// DefaultUserAgent ...
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	// Referer ...
	Referer = "Referer"
	// UserAgent ...
	UserAgent = "User-Agent"

	// CoursesPath list all courses, paginated
	CoursesPath = "/api/courses"
	// CourseDetailPath course tree by slug
	CourseDetailPath = "/api/courses/%s"
	// LessonPath lesson payload by id
	LessonPath = "/api/lessons/%s"
	// QuizzesPath all quizzes
	QuizzesPath = "/api/quizzes/all"
	// QuestionPath one question by id
	QuestionPath = "/api/questions/question"

	// SessionCookieName holds the bearer token of the learn api
	SessionCookieName = "session-cookie"

	coursesPageSize = 100
)

var (
	// ErrAuthFailed ...
	ErrAuthFailed = errors.New("session cookie rejected or expired, export a fresh cookie file and try again")
	// ErrRateLimit ...
	ErrRateLimit = errors.New("rate limited by kodekloud, wait a while and try again")
	// ErrNotFound ...
	ErrNotFound = errors.New("not found")
)

// APIError is a non 2xx answer that is not covered by a sentinel error
type APIError struct {
	Path       string
	StatusCode int
	Body       string
}

// Error implements error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("request kodekloud api %s failed, status code %d, response body: %s", e.Path, e.StatusCode, e.Body)
}

// FormatError reports a payload whose shape is not understood. Kind names
// the payload (course, lesson, quiz, question).
type FormatError struct {
	Kind   string
	ID     string
	Reason string
	Err    error
}

// Error implements error interface
func (e *FormatError) Error() string {
	s := fmt.Sprintf("unexpected %s payload", e.Kind)
	if e.ID != "" {
		s += fmt.Sprintf(" (id %s)", e.ID)
	}
	if e.Reason != "" {
		s += ": " + e.Reason
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

// Unwrap ...
func (e *FormatError) Unwrap() error {
	return e.Err
}

// A Client manages communication with the KodeKloud APIs.
type Client struct {
	HTTPClient  *resty.Client
	BaseURL     string
	QuizBaseURL string
	Cookies     []*http.Cookie
}

// NewClient returns a new KodeKloud API client. token is the session
// bearer token, see SessionToken.
func NewClient(cs []*http.Cookie, token string) *Client {
	httpClient := resty.New().
		SetCookies(cs).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(5 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetTimeout(30*time.Second).
		SetHeader(UserAgent, DefaultUserAgent).
		SetHeader(Referer, DefaultReferer).
		SetHeader("Accept", "application/json").
		SetLogger(logger.RestyLogger{})
	if token != "" {
		httpClient.SetAuthToken(token)
	}

	return &Client{
		HTTPClient:  httpClient,
		BaseURL:     DefaultBaseURL,
		QuizBaseURL: DefaultQuizBaseURL,
		Cookies:     cs,
	}
}

func (c *Client) newRequest(ctx context.Context, method, url string, params map[string]string) *resty.Request {
	r := c.HTTPClient.R()
	r.Method = method
	r.URL = url
	r.SetContext(ctx)
	if len(params) > 0 {
		r.SetQueryParams(params)
	}
	return r
}

func do(r *resty.Request) (*resty.Response, error) {
	logger.Debugf("Http request start, method: %s, url: %s",
		r.Method,
		r.URL,
	)
	resp, err := r.Execute(r.Method, r.URL)
	if err != nil {
		return nil, err
	}

	statusCode := resp.StatusCode()
	if statusCode >= 200 && statusCode < 300 {
		return resp, nil
	}

	logNotOkResponse(resp)
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrAuthFailed
	case http.StatusTooManyRequests:
		return nil, ErrRateLimit
	case http.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", r.URL, ErrNotFound)
	}
	return nil, &APIError{Path: r.URL, StatusCode: statusCode, Body: snippet(resp.String(), 300)}
}

// decode unmarshals a response body, any json error is a FormatError
func decode(resp *resty.Response, kind, id string, v interface{}) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		return &FormatError{Kind: kind, ID: id, Err: err}
	}
	return nil
}

func logNotOkResponse(resp *resty.Response) {
	logger.Warnf("Http request end, method: %s, url: %s, status code: %d, response body: %s",
		resp.Request.Method,
		resp.Request.URL,
		resp.StatusCode(),
		snippet(resp.String(), 300),
	)
}

func snippet(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
