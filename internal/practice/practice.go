// Package practice serves in-memory practice modules for local development
// of the dashboard. Nothing here is persisted.
package practice

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"resume-builder/internal/model"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var ErrModuleNotFound = errors.New("practice module not found")

type QuestionKind string

const (
	SingleChoice QuestionKind = "single_choice"
	MultiChoice  QuestionKind = "multi_choice"
	ShortText    QuestionKind = "short_text"
)

// Question is a stored question including its answer key.
type Question struct {
	ID      string       `json:"id"`
	Kind    QuestionKind `json:"kind" validate:"required,oneof=single_choice multi_choice short_text"`
	Prompt  string       `json:"prompt" validate:"required"`
	Options []string     `json:"options,omitempty"`
	// Answer is an option index for single choice, a list of indexes for
	// multi choice and the expected text for short text.
	Answer interface{} `json:"answer"`
}

// PublicQuestion is a question without its answer key.
type PublicQuestion struct {
	ID      string       `json:"id"`
	Kind    QuestionKind `json:"kind"`
	Prompt  string       `json:"prompt"`
	Options []string     `json:"options,omitempty"`
}

type Module struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Questions   []Question `json:"-"`
}

type ModuleSummary struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	QuestionCount int    `json:"question_count"`
}

type ModuleDetail struct {
	ModuleSummary
	Questions []PublicQuestion `json:"questions"`
}

// Submission maps question ids to answers in the same shapes as
// Question.Answer.
type Submission struct {
	Answers map[string]interface{} `json:"answers"`
}

type QuestionResult struct {
	QuestionID string `json:"question_id"`
	Correct    bool   `json:"correct"`
}

type SubmitResult struct {
	ModuleID string           `json:"module_id"`
	Score    int              `json:"score"`
	Total    int              `json:"total"`
	Results  []QuestionResult `json:"results"`
}

type BulkResult struct {
	Added    int               `json:"added"`
	Rejected map[string]string `json:"rejected,omitempty"`
}

// Fixtures holds the practice modules.
type Fixtures struct {
	mu       sync.RWMutex
	modules  map[string]*Module
	validate *validator.Validate
}

func NewFixtures(modules ...Module) *Fixtures {
	f := &Fixtures{modules: map[string]*Module{}, validate: validator.New()}
	for i := range modules {
		m := modules[i]
		f.modules[m.ID] = &m
	}
	return f
}

func (f *Fixtures) List() []ModuleSummary {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]ModuleSummary, 0, len(f.modules))
	for _, m := range f.modules {
		out = append(out, summary(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *Fixtures) Get(id string) (*ModuleDetail, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.modules[id]
	if !ok {
		return nil, ErrModuleNotFound
	}
	d := &ModuleDetail{ModuleSummary: summary(m), Questions: make([]PublicQuestion, 0, len(m.Questions))}
	for _, q := range m.Questions {
		d.Questions = append(d.Questions, PublicQuestion{ID: q.ID, Kind: q.Kind, Prompt: q.Prompt, Options: q.Options})
	}
	return d, nil
}

// Submit grades the answers. Unanswered questions count as wrong.
func (f *Fixtures) Submit(id string, sub Submission) (*SubmitResult, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.modules[id]
	if !ok {
		return nil, ErrModuleNotFound
	}
	res := &SubmitResult{ModuleID: id, Total: len(m.Questions), Results: []QuestionResult{}}
	for _, q := range m.Questions {
		ok := correct(q, sub.Answers[q.ID])
		if ok {
			res.Score++
		}
		res.Results = append(res.Results, QuestionResult{QuestionID: q.ID, Correct: ok})
	}
	return res, nil
}

// AddQuestions appends the valid questions to the module. Invalid entries
// are reported by position and skipped.
func (f *Fixtures) AddQuestions(id string, qs []Question) (*BulkResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.modules[id]
	if !ok {
		return nil, ErrModuleNotFound
	}
	res := &BulkResult{}
	for i, q := range qs {
		q.Prompt = strings.TrimSpace(q.Prompt)
		if msg := f.check(q); msg != "" {
			if res.Rejected == nil {
				res.Rejected = map[string]string{}
			}
			res.Rejected[fmt.Sprintf("questions[%d]", i)] = msg
			continue
		}
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		m.Questions = append(m.Questions, q)
		res.Added++
	}
	if res.Added == 0 && len(res.Rejected) > 0 {
		return res, &model.ValidationError{Fields: res.Rejected}
	}
	return res, nil
}

func (f *Fixtures) check(q Question) string {
	if err := f.validate.Struct(q); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return strings.ToLower(verrs[0].Field()) + " is " + verrs[0].Tag()
		}
		return err.Error()
	}
	switch q.Kind {
	case SingleChoice:
		i, ok := index(q.Answer)
		if !ok || i < 0 || i >= len(q.Options) {
			return "answer must be an option index"
		}
	case MultiChoice:
		set, ok := indexes(q.Answer)
		if !ok || len(set) == 0 {
			return "answer must be a list of option indexes"
		}
		for i := range set {
			if i < 0 || i >= len(q.Options) {
				return "answer must be a list of option indexes"
			}
		}
	case ShortText:
		if s, ok := q.Answer.(string); !ok || strings.TrimSpace(s) == "" {
			return "answer is required"
		}
	}
	return ""
}

func summary(m *Module) ModuleSummary {
	return ModuleSummary{ID: m.ID, Title: m.Title, Description: m.Description, QuestionCount: len(m.Questions)}
}

func correct(q Question, given interface{}) bool {
	switch q.Kind {
	case SingleChoice:
		want, ok1 := index(q.Answer)
		got, ok2 := index(given)
		return ok1 && ok2 && want == got
	case MultiChoice:
		want, ok1 := indexes(q.Answer)
		got, ok2 := indexes(given)
		if !ok1 || !ok2 || len(want) != len(got) {
			return false
		}
		for i := range want {
			if !got[i] {
				return false
			}
		}
		return true
	case ShortText:
		want, ok1 := q.Answer.(string)
		got, ok2 := given.(string)
		return ok1 && ok2 && strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
	}
	return false
}

// index accepts ints and the float64 produced by JSON decoding.
func index(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		if t == float64(int(t)) {
			return int(t), true
		}
	}
	return 0, false
}

func indexes(v interface{}) (map[int]bool, bool) {
	set := map[int]bool{}
	switch t := v.(type) {
	case []int:
		for _, i := range t {
			set[i] = true
		}
	case []interface{}:
		for _, it := range t {
			i, ok := index(it)
			if !ok {
				return nil, false
			}
			set[i] = true
		}
	default:
		return nil, false
	}
	return set, true
}
