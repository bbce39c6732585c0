package quiz

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/nicoxiang/kodekloud-downloader/internal/kodekloud"
	"github.com/nicoxiang/kodekloud-downloader/internal/markdown"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/filenamify"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/files"
	"github.com/nicoxiang/kodekloud-downloader/internal/pkg/logger"
)

const (
	// CombinedFileName is the output of a run without separate files
	CombinedFileName = "KodeKloud_Quiz.md"
	// CombinedTitle heads the combined file
	CombinedTitle = "# KodeKloud Quiz"
	// DefaultConcurrency of question fetches per quiz
	DefaultConcurrency = 8
)

// Source is the quiz api
type Source interface {
	Quizzes(ctx context.Context) ([]kodekloud.Quiz, error)
	Question(ctx context.Context, id string) (kodekloud.QuizQuestion, error)
}

// QuizWithQuestions is a quiz and the questions that could be fetched,
// in quiz order
type QuizWithQuestions struct {
	Quiz      kodekloud.Quiz
	Questions []kodekloud.QuizQuestion
}

// Collector gathers all quizzes with their questions
type Collector struct {
	Source      Source
	Concurrency int
}

// Collect fetches the quiz list, then the questions of each quiz in
// parallel. A question that fails is logged and left out.
func (c *Collector) Collect(ctx context.Context) ([]QuizWithQuestions, error) {
	quizzes, err := c.Source.Quizzes(ctx)
	if err != nil {
		return nil, err
	}
	logger.Infof("Total %d quizzes available", len(quizzes))

	out := make([]QuizWithQuestions, 0, len(quizzes))
	for i, q := range quizzes {
		logger.Infof("Fetching quiz %d - %s", i+1, q.DisplayName())
		questions, err := c.questions(ctx, q)
		if err != nil {
			return nil, err
		}
		out = append(out, QuizWithQuestions{Quiz: q, Questions: questions})
	}
	return out, nil
}

func (c *Collector) questions(ctx context.Context, q kodekloud.Quiz) ([]kodekloud.QuizQuestion, error) {
	concurrency := c.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	type result struct {
		question kodekloud.QuizQuestion
		ok       bool
	}
	results := make([]result, len(q.QuestionIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, id := range q.QuestionIDs {
		i, id := i, id
		g.Go(func() error {
			question, err := c.Source.Question(gctx, id)
			if err != nil {
				logger.WithField("quiz", q.DisplayName()).WithError(err).Warnf("skipping question %s", id)
				return nil
			}
			results[i] = result{question: question, ok: true}
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	questions := make([]kodekloud.QuizQuestion, 0, len(results))
	for _, r := range results {
		if r.ok {
			questions = append(questions, r.question)
		}
	}
	return questions, nil
}

// Render formats one quiz as a markdown section
func Render(q QuizWithQuestions) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "## %s\n", q.Quiz.DisplayName())
	for i, question := range q.Questions {
		fmt.Fprintf(&sb, "\n**%d. %s**\n\n", i+1, strings.TrimSpace(question.Question))
		for _, a := range question.Answers {
			fmt.Fprintf(&sb, "* [ ] %s\n", a)
		}
		sb.WriteString("\n**Correct answer:**\n")
		for _, a := range question.CorrectAnswers {
			fmt.Fprintf(&sb, "* [x] %s\n", a)
		}
		if question.Code != "" {
			fmt.Fprintf(&sb, "\n**Code**:\n```\n%s\n```\n", strings.TrimRight(question.Code, "\n"))
		}
		if question.Explanation != "" {
			fmt.Fprintf(&sb, "\n**Explanation**: %s\n", question.Explanation)
		}
		if question.DocumentationLink != "" {
			fmt.Fprintf(&sb, "\n**Documentation Link**: %s\n", question.DocumentationLink)
		}
	}
	return sb.String()
}

// Write saves quizzes under dir, one file per quiz when separate is set,
// otherwise all of them in CombinedFileName. It returns the written paths.
func Write(dir string, quizzes []QuizWithQuestions, separate bool) ([]string, error) {
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return nil, err
	}
	if !separate {
		sections := make([]string, 0, len(quizzes))
		for _, q := range quizzes {
			sections = append(sections, Render(q))
		}
		text := CombinedTitle + "\n\n" + strings.Join(sections, "\n---\n\n")
		name := filepath.Join(dir, CombinedFileName)
		if err := files.WriteFileAtomic(name, []byte(text)); err != nil {
			return nil, err
		}
		logger.Infof("Quiz file written to %s", name)
		return []string{name}, nil
	}

	names := filenamify.NewUniqueNames()
	paths := make([]string, 0, len(quizzes))
	for _, q := range quizzes {
		name := filepath.Join(dir, names.Claim(filenamify.Filenamify(q.Quiz.DisplayName()), markdown.MDExtension))
		if err := files.WriteFileAtomic(name, []byte(Render(q))); err != nil {
			return paths, err
		}
		logger.Infof("Quiz file written to %s", name)
		paths = append(paths, name)
	}
	return paths, nil
}
