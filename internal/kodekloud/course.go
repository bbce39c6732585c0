package kodekloud

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud/response"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

// LessonType is the declared type tag of a lesson payload
type LessonType string

// Known lesson type tags. Anything else is kept verbatim and classified
// as unsupported downstream.
const (
	LessonTypeVideo    LessonType = "video"
	LessonTypeDocument LessonType = "document"
	LessonTypeLab      LessonType = "lab"
	LessonTypeText     LessonType = "text"
	LessonTypeArticle  LessonType = "article"
	LessonTypeQuiz     LessonType = "quiz"
)

// CourseSummary is an entry of the course listing
type CourseSummary struct {
	ID    string
	Slug  string
	Title string
	Link  string
}

// Course is a full course tree. It is read only once fetched.
type Course struct {
	ID       string
	Slug     string
	Title    string
	Chapters []Chapter
}

// Chapter ...
type Chapter struct {
	ID      string
	Title   string
	Lessons []Lesson
}

// Resource is a downloadable attachment of a lesson
type Resource struct {
	Name string
	URL  string
	Type string
}

// Lesson is a validated lesson payload. The course tree fills ID, Title and
// Type; LessonDetail fills the rest.
type Lesson struct {
	ID          string
	Title       string
	Type        LessonType
	VideoURL    string
	DocumentURL string
	LabURL      string
	Content     string
	Resources   []Resource
	Qualities   map[string]string
	// Err is set on a tree lesson whose payload failed validation. The rest
	// of the course is kept, the walker reports the lesson as failed.
	Err error
}

// LessonCount is the number of lessons over all chapters
func (c Course) LessonCount() int {
	n := 0
	for _, ch := range c.Chapters {
		n += len(ch.Lessons)
	}
	return n
}

// Courses lists every course on the platform, following pagination.
func (c *Client) Courses(ctx context.Context) ([]CourseSummary, error) {
	var courses []CourseSummary
	for page := 1; ; page++ {
		var res response.CoursesResponse
		r := c.newRequest(ctx, resty.MethodGet,
			c.BaseURL+CoursesPath,
			map[string]string{
				"page":  strconv.Itoa(page),
				"limit": strconv.Itoa(coursesPageSize),
			},
		)
		resp, err := do(r)
		if err != nil {
			return nil, err
		}
		if err := decode(resp, "course list", "", &res); err != nil {
			return nil, err
		}
		for _, v := range res.Courses {
			if v.Slug == "" {
				continue
			}
			courses = append(courses, CourseSummary{
				ID:    string(v.ID),
				Slug:  v.Slug,
				Title: v.Title,
				Link:  v.Link,
			})
		}
		if len(res.Courses) == 0 || page >= res.Metadata.TotalPages {
			break
		}
	}
	return courses, nil
}

// CourseDetail fetches and validates the chapter/lesson tree of a course
func (c *Client) CourseDetail(ctx context.Context, slug string) (Course, error) {
	var res response.CourseDetailResponse
	r := c.newRequest(ctx, resty.MethodGet,
		c.BaseURL+fmt.Sprintf(CourseDetailPath, url.PathEscape(slug)),
		nil,
	)
	resp, err := do(r)
	if err != nil {
		return Course{}, err
	}
	if err := decode(resp, "course", slug, &res); err != nil {
		return Course{}, err
	}
	return parseCourse(res)
}

// LessonDetail fetches one lesson payload
func (c *Client) LessonDetail(ctx context.Context, courseID, lessonID string) (Lesson, error) {
	var res response.Lesson
	r := c.newRequest(ctx, resty.MethodGet,
		c.BaseURL+fmt.Sprintf(LessonPath, url.PathEscape(lessonID)),
		map[string]string{"course_id": courseID},
	)
	resp, err := do(r)
	if err != nil {
		return Lesson{}, err
	}
	if err := decode(resp, "lesson", lessonID, &res); err != nil {
		return Lesson{}, err
	}
	return parseLesson(res)
}

func parseCourse(res response.CourseDetailResponse) (Course, error) {
	if res.ID == "" || strings.TrimSpace(res.Title) == "" {
		return Course{}, &FormatError{Kind: "course", ID: res.Slug, Reason: "missing id or title"}
	}
	course := Course{
		ID:    string(res.ID),
		Slug:  res.Slug,
		Title: res.Title,
	}
	for i, m := range res.Modules {
		title := strings.TrimSpace(m.Title)
		if title == "" {
			title = fmt.Sprintf("Module %d", i+1)
		}
		ch := Chapter{ID: string(m.ID), Title: title}
		for _, l := range m.Lessons {
			lesson, err := parseLesson(l)
			if err != nil {
				logger.Warnf("course %s: %v", res.Slug, err)
				lesson = Lesson{ID: string(l.ID), Title: strings.TrimSpace(l.Title), Err: err}
				if lesson.Title == "" {
					lesson.Title = "Lesson " + lesson.ID
				}
			}
			ch.Lessons = append(ch.Lessons, lesson)
		}
		course.Chapters = append(course.Chapters, ch)
	}
	return course, nil
}

// parseLesson validates the tagged shape of a lesson once at the boundary
func parseLesson(l response.Lesson) (Lesson, error) {
	if l.ID == "" {
		return Lesson{}, &FormatError{Kind: "lesson", Reason: "missing id"}
	}
	if strings.TrimSpace(l.Type) == "" {
		return Lesson{}, &FormatError{Kind: "lesson", ID: string(l.ID), Reason: "missing type"}
	}
	lesson := Lesson{
		ID:          string(l.ID),
		Title:       strings.TrimSpace(l.Title),
		Type:        LessonType(strings.ToLower(strings.TrimSpace(l.Type))),
		VideoURL:    strings.TrimSpace(l.VideoURL),
		DocumentURL: strings.TrimSpace(l.DocumentURL),
		LabURL:      strings.TrimSpace(l.LabURL),
		Content:     l.Content,
		Qualities:   l.Qualities,
	}
	if lesson.Title == "" {
		lesson.Title = "Lesson " + lesson.ID
	}
	for _, r := range l.Resources {
		if r.URL == "" {
			continue
		}
		lesson.Resources = append(lesson.Resources, Resource{Name: r.Name, URL: r.URL, Type: r.Type})
	}
	return lesson, nil
}

// Merge fills the payload fields of a tree lesson from its detail. The tree
// keeps its title so names stay stable between runs.
func (l Lesson) Merge(detail Lesson) Lesson {
	merged := detail
	merged.ID = l.ID
	if l.Title != "" {
		merged.Title = l.Title
	}
	if merged.Type == "" {
		merged.Type = l.Type
	}
	return merged
}
