package kodekloud

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud/response"
)

// Quiz ...
type Quiz struct {
	ID          string
	Name        string
	Topic       string
	ProjectID   string
	Order       string
	QuestionIDs []string
}

// QuizQuestion ...
type QuizQuestion struct {
	ID                string
	Type              int
	Question          string
	Answers           []string
	CorrectAnswers    []string
	Code              string
	Labels            []string
	DocumentationLink string
	Explanation       string
	Topic             string
}

// DisplayName is the quiz name, falling back to its topic
func (q Quiz) DisplayName() string {
	if strings.TrimSpace(q.Name) != "" {
		return strings.TrimSpace(q.Name)
	}
	if strings.TrimSpace(q.Topic) != "" {
		return strings.TrimSpace(q.Topic)
	}
	return "Quiz " + q.ID
}

// Quizzes lists all quizzes
func (c *Client) Quizzes(ctx context.Context) ([]Quiz, error) {
	var res []response.Quiz
	r := c.newRequest(ctx, resty.MethodGet, c.QuizBaseURL+QuizzesPath, nil)
	resp, err := do(r)
	if err != nil {
		return nil, err
	}
	if err := decode(resp, "quiz list", "", &res); err != nil {
		return nil, err
	}
	quizzes := make([]Quiz, 0, len(res))
	for _, q := range res {
		quizzes = append(quizzes, Quiz{
			ID:          q.ID.OID,
			Name:        q.Name,
			Topic:       q.Topic,
			ProjectID:   q.ProjectID,
			Order:       string(q.Order),
			QuestionIDs: orderedQuestionIDs(q.Questions),
		})
	}
	return quizzes, nil
}

// Question fetches one question by id
func (c *Client) Question(ctx context.Context, id string) (QuizQuestion, error) {
	var res response.QuizQuestion
	r := c.newRequest(ctx, resty.MethodGet,
		c.QuizBaseURL+QuestionPath,
		map[string]string{"id": id},
	)
	resp, err := do(r)
	if err != nil {
		return QuizQuestion{}, err
	}
	if err := decode(resp, "question", id, &res); err != nil {
		return QuizQuestion{}, err
	}
	if strings.TrimSpace(res.Question) == "" {
		return QuizQuestion{}, &FormatError{Kind: "question", ID: id, Reason: "empty question text"}
	}
	qid := res.ID.OID
	if qid == "" {
		qid = id
	}
	return QuizQuestion{
		ID:                qid,
		Type:              res.Type,
		Question:          res.Question,
		Answers:           res.Answers,
		CorrectAnswers:    res.CorrectAnswers,
		Code:              res.Code["script"],
		Labels:            res.Labels,
		DocumentationLink: res.DocumentationLink,
		Explanation:       res.Explanation,
		Topic:             res.Topic,
	}, nil
}

// orderedQuestionIDs returns the map values ordered by key, numerically when
// keys are numbers
func orderedQuestionIDs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil || errB == nil:
			return errA == nil
		}
		return keys[i] < keys[j]
	})
	ids := make([]string, 0, len(keys))
	for _, k := range keys {
		if m[k] != "" {
			ids = append(ids, m[k])
		}
	}
	return ids
}
